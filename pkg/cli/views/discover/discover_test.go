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

package discover

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/context"
	"github.com/nextread/nextread/pkg/cli/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSession struct{}

func (staticSession) AccessToken() string { return "test-token" }
func (staticSession) Refresh() error      { return nil }
func (staticSession) Clear() error        { return nil }

// listServer serves /books from a fixed catalog size and records the queries
// it saw
type listServer struct {
	mu      sync.Mutex
	total   int
	fail    bool
	queries []map[string]string
}

func (s *listServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		q := map[string]string{}
		for key := range r.URL.Query() {
			q[key] = r.URL.Query().Get(key)
		}
		s.queries = append(s.queries, q)
		fail := s.fail
		total := s.total
		s.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail": "boom"}`))
			return
		}

		resp := client.BookListResp{
			Books: []client.Book{{ID: 1, Title: "Dune", Author: "Frank Herbert"}},
			Total: total,
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func (s *listServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queries)
}

func (s *listServer) lastQuery() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queries) == 0 {
		return nil
	}

	return s.queries[len(s.queries)-1]
}

func newTestView(t *testing.T, srv *listServer, debounce time.Duration) (*View, *router.Router) {
	t.Helper()

	server := httptest.NewServer(srv.handler())
	t.Cleanup(server.Close)

	c := client.New(context.Ctx{APIEndpoint: server.URL, Version: "test"}, staticSession{})
	v := New(c, 20, debounce)

	r := router.New()
	r.Register(router.StateDiscover, v)

	return v, r
}

func TestMountLoadsFirstPage(t *testing.T) {
	srv := &listServer{total: 45}
	v, r := newTestView(t, srv, time.Hour)

	require.NoError(t, r.Navigate(router.StateDiscover, router.Params{}))

	assert.Equal(t, 1, srv.requestCount(), "request count mismatch")
	assert.Equal(t, "1", srv.lastQuery()["page"], "page mismatch")
	assert.Equal(t, "20", srv.lastQuery()["page_size"], "page size mismatch")
	assert.Len(t, v.Books(), 1, "book count mismatch")
	assert.Equal(t, 3, v.TotalPages(), "total pages mismatch")
	assert.NoError(t, v.LoadErr(), "load should succeed")
}

func TestSearchDebounce(t *testing.T) {
	srv := &listServer{total: 45}
	v, r := newTestView(t, srv, 50*time.Millisecond)

	require.NoError(t, r.Navigate(router.StateDiscover, router.Params{}))
	require.Equal(t, 1, srv.requestCount(), "request count mismatch after mount")

	// Two inputs inside one quiet period: only the last fires, once
	v.SetSearchInput("fantasy")
	time.Sleep(10 * time.Millisecond)
	v.SetSearchInput("fantasy novel")

	require.Eventually(t, func() bool {
		return srv.requestCount() == 2
	}, time.Second, 5*time.Millisecond, "expected exactly one debounced fetch")

	// No further fetch after the quiet period
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, srv.requestCount(), "the earlier input must not fire")

	assert.Equal(t, "fantasy novel", srv.lastQuery()["search"], "search param mismatch")
	assert.Equal(t, "1", srv.lastQuery()["page"], "a new search must reset to page one")
	assert.Equal(t, "fantasy novel", v.Query().Search, "query state mismatch")
}

func TestUnmountCancelsPendingSearch(t *testing.T) {
	srv := &listServer{total: 45}
	v, r := newTestView(t, srv, 50*time.Millisecond)

	require.NoError(t, r.Navigate(router.StateDiscover, router.Params{}))
	v.SetSearchInput("fantasy")
	v.Unmount()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, srv.requestCount(), "a cancelled search must not fire")
}

func TestSetGenre(t *testing.T) {
	srv := &listServer{total: 45}
	v, r := newTestView(t, srv, time.Hour)

	require.NoError(t, r.Navigate(router.StateDiscover, router.Params{}))
	v.NextPage()
	require.Equal(t, "2", srv.lastQuery()["page"], "page mismatch after next")

	v.SetGenre("sci-fi")

	assert.Equal(t, 3, srv.requestCount(), "genre filtering fetches immediately")
	assert.Equal(t, "sci-fi", srv.lastQuery()["genre"], "genre param mismatch")
	assert.Equal(t, "1", srv.lastQuery()["page"], "a genre change must reset to page one")

	v.SetGenre("")
	_, ok := srv.lastQuery()["genre"]
	assert.False(t, ok, "an empty genre clears the filter")
}

func TestPaginationBounds(t *testing.T) {
	srv := &listServer{total: 45}
	v, r := newTestView(t, srv, time.Hour)

	require.NoError(t, r.Navigate(router.StateDiscover, router.Params{}))

	assert.False(t, v.HasPrev(), "no previous page on page one")
	assert.True(t, v.HasNext(), "a next page should exist")

	v.PrevPage()
	assert.Equal(t, 1, srv.requestCount(), "prev on the first page is a no-op")

	v.NextPage()
	v.NextPage()
	assert.Equal(t, "3", srv.lastQuery()["page"], "page mismatch")
	assert.False(t, v.HasNext(), "no next page on the last page")

	v.NextPage()
	assert.Equal(t, 3, srv.requestCount(), "next on the last page is a no-op")
}

func TestLoadError(t *testing.T) {
	srv := &listServer{total: 45, fail: true}
	v, r := newTestView(t, srv, time.Hour)

	require.NoError(t, r.Navigate(router.StateDiscover, router.Params{}))

	assert.Error(t, v.LoadErr(), "the load error must be kept")
	assert.Empty(t, v.Books(), "no books on a failed load")
	assert.Equal(t, 0, v.TotalPages(), "no pages on a failed load")
}

func TestRemountResetsQuery(t *testing.T) {
	srv := &listServer{total: 45}
	v, r := newTestView(t, srv, time.Hour)

	require.NoError(t, r.Navigate(router.StateDiscover, router.Params{}))
	v.SetGenre("sci-fi")
	v.NextPage()

	require.NoError(t, r.Navigate(router.StateDiscover, router.Params{}))

	q := v.Query()
	assert.Equal(t, 1, q.Page, "remount must reset the page")
	assert.Equal(t, "", q.Genre, "remount must clear the genre")
	assert.Equal(t, "", q.Search, "remount must clear the search")
}
