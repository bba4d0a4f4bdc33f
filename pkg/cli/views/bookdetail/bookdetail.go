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

// Package bookdetail implements the book detail view: the book itself, the
// user's interaction state for it, and server-confirmed like/bookmark/rate
// mutations.
package bookdetail

import (
	"sync"

	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/interactions"
	"github.com/nextread/nextread/pkg/cli/log"
	"github.com/nextread/nextread/pkg/cli/output"
	"github.com/nextread/nextread/pkg/cli/router"
	"github.com/pkg/errors"
)

const (
	// interactionsFetchSize bounds the history page folded into the store
	interactionsFetchSize = 100
	// similarCount is the number of similar books requested per visit
	similarCount = 5
)

// View is the book detail view
type View struct {
	client *client.Client
	store  *interactions.Store

	mu       sync.Mutex
	nav      router.Nav
	bookID   int
	book     *client.Book
	notFound bool
}

// New returns a book detail view backed by the given interaction store
func New(c *client.Client, store *interactions.Store) *View {
	return &View{client: c, store: store}
}

// Mount loads the book, the user's interaction state for it and the
// similar-books list. The book fetch, the interaction fetch and the view
// telemetry write are independent: only a missing book fails the view; the
// other two fall back silently.
func (v *View) Mount(nav router.Nav) error {
	bookID := nav.Params.BookID

	v.mu.Lock()
	v.nav = nav
	v.bookID = bookID
	v.book = nil
	v.notFound = false
	v.mu.Unlock()

	var wg sync.WaitGroup
	var book client.Book
	var bookErr error
	var records []client.Interaction

	wg.Add(2)
	go func() {
		defer wg.Done()
		book, bookErr = v.client.GetBook(bookID)
	}()
	go func() {
		defer wg.Done()
		// Non-fatal: without the history the view proceeds with defaults.
		records, _ = v.client.ListMyInteractions(interactionsFetchSize)
	}()

	// Telemetry, not critical path. Never blocks or fails the render.
	go func() {
		_, _ = v.client.CreateInteraction(bookID, interactions.TypeView, 0)
	}()

	wg.Wait()

	if bookErr != nil {
		nav.Guard.Apply(func() {
			v.mu.Lock()
			v.notFound = true
			v.mu.Unlock()

			output.BookNotFound(bookID)
		})
		return nil
	}

	entry := v.store.Load(bookID, records)

	nav.Guard.Apply(func() {
		v.mu.Lock()
		v.book = &book
		v.mu.Unlock()

		output.BookDetail(book, entry)
	})

	v.loadSimilar(bookID, nav.Guard)

	return nil
}

// Unmount is a no-op; the view keeps no resources
func (v *View) Unmount() {}

// loadSimilar fetches the similar-books list. Failure and emptiness both
// render guidance text; this is a soft personalization signal, not an error.
func (v *View) loadSimilar(bookID int, guard router.Guard) {
	resp, err := v.client.SimilarBooks(bookID, similarCount)

	guard.Apply(func() {
		if err != nil || len(resp.Recommendations) == 0 {
			output.SimilarBooksUnavailable()
			return
		}

		output.SimilarBooks(resp.Recommendations)
	})
}

// Book returns the loaded book, or false if none is loaded
func (v *View) Book() (client.Book, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.book == nil {
		return client.Book{}, false
	}

	return *v.book, true
}

// Entry returns the user's interaction state for the loaded book
func (v *View) Entry() interactions.Entry {
	v.mu.Lock()
	bookID := v.bookID
	v.mu.Unlock()

	return v.store.Get(bookID)
}

// Like records a like for the loaded book. Liking an already-liked book is
// a client-side no-op with no network call. The local state flips only
// after the server confirms; on failure it stays untouched.
func (v *View) Like() error {
	bookID, err := v.currentBookID()
	if err != nil {
		return err
	}

	if v.store.Get(bookID).Liked {
		return nil
	}

	if _, err := v.client.CreateInteraction(bookID, interactions.TypeLike, 0); err != nil {
		output.ActionFailed("like", err)
		return err
	}

	v.store.MarkLiked(bookID)
	log.Successf("liked\n")

	return nil
}

// Bookmark records a bookmark for the loaded book, with the same semantics
// as Like
func (v *View) Bookmark() error {
	bookID, err := v.currentBookID()
	if err != nil {
		return err
	}

	if v.store.Get(bookID).Bookmarked {
		return nil
	}

	if _, err := v.client.CreateInteraction(bookID, interactions.TypeBookmark, 0); err != nil {
		output.ActionFailed("bookmark", err)
		return err
	}

	v.store.MarkBookmarked(bookID)
	log.Successf("bookmarked\n")

	return nil
}

// Rate records a star rating between one and five. Re-submitting the
// currently confirmed rating issues no network call; the displayed rating
// changes only after the server confirms.
func (v *View) Rate(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	bookID, err := v.currentBookID()
	if err != nil {
		return err
	}

	if v.store.Get(bookID).Rating == rating {
		return nil
	}

	if _, err := v.client.CreateInteraction(bookID, interactions.TypeRate, rating); err != nil {
		output.ActionFailed("rating", err)
		return err
	}

	v.store.SetRating(bookID, rating)
	log.Successf("rated %d stars\n", rating)

	return nil
}

func (v *View) currentBookID() (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.book == nil {
		return 0, errors.New("no book loaded")
	}

	return v.bookID, nil
}
