/* Copyright 2025 NextRead Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package interactions tracks the current user's per-book interaction state.
// Entries are derived by folding the server's interaction history and are
// mutated locally only after the server has confirmed a write.
package interactions

import (
	"sync"
	"time"

	"github.com/nextread/nextread/pkg/cli/client"
)

// Interaction types understood by the server
const (
	TypeView     = "view"
	TypeLike     = "like"
	TypeBookmark = "bookmark"
	TypeRate     = "rate"
	TypePurchase = "purchase"
)

// Entry is this user's interaction state for a single book. A zero Rating
// means unrated.
type Entry struct {
	Liked      bool
	Bookmarked bool
	Rating     int
}

// Store caches per-book entries for the current user. It holds derived
// state only and performs no I/O.
type Store struct {
	mu      sync.Mutex
	entries map[int]Entry
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{entries: map[int]Entry{}}
}

// Load folds the records matching the given book into its entry, replacing
// any previous entry: any like record marks the book liked, any bookmark
// record marks it bookmarked, and the most recent rate record sets the
// rating. Records for other books are ignored.
func (s *Store) Load(bookID int, records []client.Interaction) Entry {
	var entry Entry
	var latestRate time.Time

	for _, record := range records {
		if record.BookID != bookID {
			continue
		}

		switch record.Type {
		case TypeLike:
			entry.Liked = true
		case TypeBookmark:
			entry.Bookmarked = true
		case TypeRate:
			if record.CreatedAt.After(latestRate) {
				latestRate = record.CreatedAt
				entry.Rating = int(record.Rating)
			}
		}
	}

	s.mu.Lock()
	s.entries[bookID] = entry
	s.mu.Unlock()

	return entry
}

// Get returns the entry for the given book, or the zero entry if none has
// been loaded
func (s *Store) Get(bookID int) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.entries[bookID]
}

// MarkLiked records a server-confirmed like
func (s *Store) MarkLiked(bookID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[bookID]
	entry.Liked = true
	s.entries[bookID] = entry
}

// MarkBookmarked records a server-confirmed bookmark
func (s *Store) MarkBookmarked(bookID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[bookID]
	entry.Bookmarked = true
	s.entries[bookID] = entry
}

// SetRating records a server-confirmed rating
func (s *Store) SetRating(bookID, rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[bookID]
	entry.Rating = rating
	s.entries[bookID] = entry
}
