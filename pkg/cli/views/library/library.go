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

// Package library implements the interaction history view. The history is
// fetched once per mount; switching the type filter is purely client-side.
package library

import (
	"sync"

	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/interactions"
	"github.com/nextread/nextread/pkg/cli/output"
	"github.com/nextread/nextread/pkg/cli/router"
	"github.com/pkg/errors"
)

// historyFetchSize bounds the single history fetch per mount
const historyFetchSize = 100

// FilterAll shows every interaction type
const FilterAll = "all"

var validFilters = map[string]bool{
	FilterAll:                 true,
	interactions.TypeLike:     true,
	interactions.TypeBookmark: true,
	interactions.TypeRate:     true,
	interactions.TypeView:     true,
}

// View is the library view
type View struct {
	client *client.Client

	mu      sync.Mutex
	nav     router.Nav
	records []client.Interaction
	filter  string
	// titles caches book titles per id for the lifetime of one mount.
	// Enrichment fetches are deduplicated through it.
	titles  map[int]string
	loadErr error
}

// New returns a library view
func New(c *client.Client) *View {
	return &View{client: c, filter: FilterAll, titles: map[int]string{}}
}

// Mount fetches the user's interaction history once and renders it
// unfiltered
func (v *View) Mount(nav router.Nav) error {
	v.mu.Lock()
	v.nav = nav
	v.records = nil
	v.filter = FilterAll
	v.titles = map[int]string{}
	v.loadErr = nil
	v.mu.Unlock()

	records, err := v.client.ListMyInteractions(historyFetchSize)
	if err != nil {
		nav.Guard.Apply(func() {
			v.mu.Lock()
			v.loadErr = err
			v.mu.Unlock()

			output.LoadError("library", err)
		})
		return nil
	}

	v.mu.Lock()
	v.records = records
	v.mu.Unlock()

	v.render(nav.Guard)

	return nil
}

// Unmount is a no-op; the view keeps no resources
func (v *View) Unmount() {}

// SetFilter narrows the displayed history to one interaction type without
// refetching it
func (v *View) SetFilter(filter string) error {
	if !validFilters[filter] {
		return errors.Errorf("unknown filter %q", filter)
	}

	v.mu.Lock()
	v.filter = filter
	guard := v.nav.Guard
	v.mu.Unlock()

	v.render(guard)

	return nil
}

// Filter returns the active filter
func (v *View) Filter() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.filter
}

// Records returns the fetched history
func (v *View) Records() []client.Interaction {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.records
}

// Filtered returns the history rows matching the active filter
func (v *View) Filtered() []client.Interaction {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.filteredLocked()
}

func (v *View) filteredLocked() []client.Interaction {
	if v.filter == FilterAll {
		return v.records
	}

	var ret []client.Interaction
	for _, record := range v.records {
		if record.Type == v.filter {
			ret = append(ret, record)
		}
	}

	return ret
}

// render enriches the filtered rows with book titles and prints them. Titles
// are fetched lazily, once per distinct book id; a failed fetch leaves the
// row with a placeholder.
func (v *View) render(guard router.Guard) {
	v.mu.Lock()
	rows := v.filteredLocked()
	filter := v.filter

	missing := []int{}
	seen := map[int]bool{}
	for _, record := range rows {
		if _, ok := v.titles[record.BookID]; ok || seen[record.BookID] {
			continue
		}
		seen[record.BookID] = true
		missing = append(missing, record.BookID)
	}
	v.mu.Unlock()

	for _, bookID := range missing {
		book, err := v.client.GetBook(bookID)
		if err != nil {
			continue
		}

		v.mu.Lock()
		v.titles[book.ID] = book.Title
		v.mu.Unlock()
	}

	guard.Apply(func() {
		v.mu.Lock()
		display := make([]output.LibraryRow, 0, len(rows))
		for _, record := range rows {
			display = append(display, output.LibraryRow{
				CreatedAt: record.CreatedAt,
				Type:      record.Type,
				Title:     v.titles[record.BookID],
			})
		}
		v.mu.Unlock()

		output.Library(display, filter)
	})
}
