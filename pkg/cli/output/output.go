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

// Package output provides functions to print information on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/interactions"
	"github.com/nextread/nextread/pkg/cli/log"
)

// BookList prints a page of books followed by the pager line. The pager is
// omitted when everything fits on one page.
func BookList(books []client.Book, page, totalPages int) {
	for _, b := range books {
		rating := "unrated"
		if b.AvgRating > 0 {
			rating = fmt.Sprintf("%.1f", b.AvgRating)
		}
		fmt.Printf("  %4d  %-44s %-24s %-16s %s\n", b.ID, truncate(b.Title, 44), truncate(b.Author, 24), truncate(b.Genre, 16), rating)
	}

	if totalPages > 1 {
		prev := "prev"
		if page <= 1 {
			prev = "    "
		}
		next := "next"
		if page >= totalPages {
			next = "    "
		}
		log.Plainf("page %d of %d  [%s | %s]\n", page, totalPages, prev, next)
	}
}

// NoResults prints the empty-result affordance for a book listing. It is
// distinct from a load failure.
func NoResults() {
	log.Info("no books matched your search\n")
}

// LoadError prints the in-place error affordance for a failed primary load
func LoadError(what string, err error) {
	log.Errorf("could not load %s: %s\n", what, err.Error())
}

// BookDetail prints a book along with the user's interaction state for it
func BookDetail(b client.Book, entry interactions.Entry) {
	log.Infof("%s\n", b.Title)
	log.Plainf("author: %s\n", b.Author)
	log.Plainf("genre: %s\n", b.Genre)
	if b.PublishedYear != 0 {
		log.Plainf("published: %d\n", b.PublishedYear)
	}
	if b.ISBN != "" {
		log.Plainf("isbn: %s\n", b.ISBN)
	}
	if b.AvgRating > 0 {
		log.Plainf("avg rating: %.1f (%d interactions)\n", b.AvgRating, b.TotalInteractions)
	}
	if b.Description != "" {
		fmt.Printf("\n  %s\n\n", b.Description)
	}

	liked := "like"
	if entry.Liked {
		liked = "liked ✔"
	}
	bookmarked := "bookmark"
	if entry.Bookmarked {
		bookmarked = "bookmarked ✔"
	}
	rated := "unrated"
	if entry.Rating > 0 {
		rated = strings.Repeat("★", entry.Rating)
	}
	log.Plainf("[%s] [%s] [%s]\n", liked, bookmarked, rated)
}

// BookNotFound prints the not-found affordance with a path back to discovery
func BookNotFound(bookID int) {
	log.Errorf("book %d was not found\n", bookID)
	log.Plainf("type 'discover' to go back to browsing\n")
}

// SimilarBooks prints the similar-books list
func SimilarBooks(items []client.RecommendedBook) {
	log.Infof("readers also picked:\n")
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = fmt.Sprintf("book #%d", item.BookID)
		}
		fmt.Printf("  %4d  %s\n", item.BookID, title)
	}
}

// SimilarBooksUnavailable prints the guidance text shown when the engine has
// nothing for this book. This is a soft signal, not an error.
func SimilarBooksUnavailable() {
	log.Plainf("no similar books yet; they appear as readers interact with the catalog\n")
}

// Recommendations prints a ranked recommendation list with optional match
// scores rendered as percentages
func Recommendations(items []client.RecommendedBook) {
	for i, item := range items {
		title := item.Title
		if title == "" {
			title = fmt.Sprintf("book #%d", item.BookID)
		}

		line := fmt.Sprintf("%2d. %-44s", i+1, truncate(title, 44))
		if item.Author != "" {
			line += fmt.Sprintf(" %-24s", truncate(item.Author, 24))
		}
		if item.Genre != "" {
			line += fmt.Sprintf(" %-16s", truncate(item.Genre, 16))
		}
		if item.Score > 0 {
			line += fmt.Sprintf(" %3.0f%% match", item.Score*100)
		}
		fmt.Printf("  %s\n", line)
	}
}

// NoRecommendations prints the call-to-action shown when the engine has no
// personalized picks yet
func NoRecommendations() {
	log.Info("no recommendations yet\n")
	log.Plainf("interact with a few books in 'discover' and check back\n")
}

// LibraryRow is one row of the interaction history display
type LibraryRow struct {
	CreatedAt time.Time
	Type      string
	Title     string
}

// Library prints the filtered interaction history
func Library(rows []LibraryRow, filter string) {
	if len(rows) == 0 {
		log.Infof("no %s interactions\n", filter)
		return
	}

	for _, row := range rows {
		title := row.Title
		if title == "" {
			title = "(unknown title)"
		}
		fmt.Printf("  %s  %-9s %s\n", row.CreatedAt.Format("Jan 2, 2006"), row.Type, title)
	}
}

// ActionFailed prints the transient notification for a failed user-initiated
// mutation. The triggering control keeps its pre-action state.
func ActionFailed(action string, err error) {
	log.Errorf("%s failed: %s\n", action, err.Error())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max-1] + "…"
}
