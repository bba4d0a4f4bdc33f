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

// Package discover implements the book discovery view: a paginated listing
// with debounced free-text search and immediate genre filtering.
package discover

import (
	"sync"
	"time"

	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/output"
	"github.com/nextread/nextread/pkg/cli/router"
)

// View is the discover view. Its page query lives for the duration of one
// mount; remounting starts over from page one with no filters.
type View struct {
	client   *client.Client
	pageSize int
	debounce time.Duration

	mu      sync.Mutex
	nav     router.Nav
	query   client.ListBooksQuery
	books   []client.Book
	total   int
	loadErr error
	// timer is the single pending-timer slot for search input. Arming it
	// cancels and replaces any previous pending timer, so only the last
	// input value within a quiet period fires.
	timer *time.Timer
}

// New returns a discover view
func New(c *client.Client, pageSize int, debounce time.Duration) *View {
	return &View{client: c, pageSize: pageSize, debounce: debounce}
}

// Mount resets the page query and loads the first page
func (v *View) Mount(nav router.Nav) error {
	v.mu.Lock()
	v.stopTimer()
	v.nav = nav
	v.query = client.ListBooksQuery{Page: 1, PageSize: v.pageSize}
	v.books = nil
	v.total = 0
	v.loadErr = nil
	v.mu.Unlock()

	v.load()

	return nil
}

// Unmount cancels any pending search
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopTimer()
}

// SetSearchInput registers one unit of search input. The fetch is debounced:
// only after the quiet interval elapses with no further input does the query
// fire, resetting the page to one.
func (v *View) SetSearchInput(input string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopTimer()
	v.timer = time.AfterFunc(v.debounce, func() {
		v.commitSearch(input)
	})
}

func (v *View) commitSearch(input string) {
	v.mu.Lock()
	v.timer = nil
	v.query.Search = input
	v.query.Page = 1
	v.mu.Unlock()

	v.load()
}

// SetGenre applies a genre filter immediately, resetting the page to one.
// An empty genre clears the filter.
func (v *View) SetGenre(genre string) {
	v.mu.Lock()
	v.query.Genre = genre
	v.query.Page = 1
	v.mu.Unlock()

	v.load()
}

// NextPage advances to the next page. It is a no-op on the last page.
func (v *View) NextPage() {
	v.mu.Lock()
	if v.query.Page >= v.totalPages() {
		v.mu.Unlock()
		return
	}
	v.query.Page++
	v.mu.Unlock()

	v.load()
}

// PrevPage goes back one page. It is a no-op on the first page.
func (v *View) PrevPage() {
	v.mu.Lock()
	if v.query.Page <= 1 {
		v.mu.Unlock()
		return
	}
	v.query.Page--
	v.mu.Unlock()

	v.load()
}

// Query returns the current page query
func (v *View) Query() client.ListBooksQuery {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.query
}

// Books returns the currently displayed page of books
func (v *View) Books() []client.Book {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.books
}

// TotalPages returns the number of pages for the current result set
func (v *View) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.totalPages()
}

// HasPrev reports whether a previous page exists
func (v *View) HasPrev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.query.Page > 1
}

// HasNext reports whether a next page exists
func (v *View) HasNext() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.query.Page < v.totalPages()
}

// LoadErr returns the error of the last failed load, if the current listing
// failed to load
func (v *View) LoadErr() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.loadErr
}

func (v *View) totalPages() int {
	if v.total <= 0 {
		return 0
	}

	return (v.total + v.pageSize - 1) / v.pageSize
}

// stopTimer clears the pending-timer slot. Callers must hold v.mu.
func (v *View) stopTimer() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

// load fetches the page described by the current query and renders it. The
// result is applied through the nav guard so that a fetch outliving this
// view cannot touch a newer one.
func (v *View) load() {
	v.mu.Lock()
	q := v.query
	guard := v.nav.Guard
	v.mu.Unlock()

	resp, err := v.client.ListBooks(q)
	if err != nil {
		guard.Apply(func() {
			v.mu.Lock()
			v.books = nil
			v.total = 0
			v.loadErr = err
			v.mu.Unlock()

			output.LoadError("books", err)
		})
		return
	}

	guard.Apply(func() {
		v.mu.Lock()
		v.books = resp.Books
		v.total = resp.Total
		v.loadErr = nil
		totalPages := v.totalPages()
		v.mu.Unlock()

		if len(resp.Books) == 0 {
			output.NoResults()
			return
		}

		output.BookList(resp.Books, q.Page, totalPages)
	})
}
