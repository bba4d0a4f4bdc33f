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

package bookdetail

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/context"
	"github.com/nextread/nextread/pkg/cli/interactions"
	"github.com/nextread/nextread/pkg/cli/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSession struct{}

func (staticSession) AccessToken() string { return "test-token" }
func (staticSession) Refresh() error      { return nil }
func (staticSession) Clear() error        { return nil }

// bookServer serves one book plus the interaction endpoints and counts the
// interaction writes it receives per type
type bookServer struct {
	mu sync.Mutex

	book        client.Book
	history     []client.Interaction
	historyFail bool
	writeFail   bool
	writes      map[string]int
}

func newBookServer(book client.Book) *bookServer {
	return &bookServer{book: book, writes: map[string]int{}}
}

func (s *bookServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		switch {
		case r.Method == "GET" && r.URL.Path == fmt.Sprintf("/books/%d", s.book.ID):
			json.NewEncoder(w).Encode(s.book)
		case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/books/"):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Book not found"}`))
		case r.Method == "GET" && r.URL.Path == "/interactions/me":
			if s.historyFail {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if s.history == nil {
				w.Write([]byte("[]"))
				return
			}
			json.NewEncoder(w).Encode(s.history)
		case r.Method == "POST" && r.URL.Path == "/interactions":
			var payload struct {
				BookID          int    `json:"book_id"`
				InteractionType string `json:"interaction_type"`
			}
			json.NewDecoder(r.Body).Decode(&payload)

			if s.writeFail && payload.InteractionType != interactions.TypeView {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"detail": "boom"}`))
				return
			}

			s.writes[payload.InteractionType]++
			json.NewEncoder(w).Encode(client.Interaction{ID: 1, BookID: payload.BookID, Type: payload.InteractionType})
		case strings.HasPrefix(r.URL.Path, "/recommendations/similar/"):
			json.NewEncoder(w).Encode(client.RecommendationsResp{
				Recommendations: []client.RecommendedBook{{BookID: 12, Title: "Hyperion"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (s *bookServer) writeCount(interactionType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writes[interactionType]
}

func newTestView(t *testing.T, srv *bookServer) (*View, *router.Router) {
	t.Helper()

	server := httptest.NewServer(srv.handler())
	t.Cleanup(server.Close)

	c := client.New(context.Ctx{APIEndpoint: server.URL, Version: "test"}, staticSession{})
	v := New(c, interactions.NewStore())

	r := router.New()
	r.Register(router.StateBookDetail, v)

	return v, r
}

func TestMountLoadsBook(t *testing.T) {
	srv := newBookServer(client.Book{ID: 7, Title: "Dune", Author: "Frank Herbert"})
	srv.history = []client.Interaction{
		{BookID: 7, Type: interactions.TypeLike, CreatedAt: time.Now()},
		{BookID: 8, Type: interactions.TypeBookmark, CreatedAt: time.Now()},
	}

	v, r := newTestView(t, srv)

	require.NoError(t, r.Navigate(router.StateBookDetail, router.Params{BookID: 7}))

	book, ok := v.Book()
	require.True(t, ok, "expected a loaded book")
	assert.Equal(t, "Dune", book.Title, "title mismatch")

	entry := v.Entry()
	assert.True(t, entry.Liked, "the like from the history must be folded in")
	assert.False(t, entry.Bookmarked, "another book's bookmark must be ignored")

	// The view write is telemetry on a separate goroutine
	require.Eventually(t, func() bool {
		return srv.writeCount(interactions.TypeView) == 1
	}, time.Second, 5*time.Millisecond, "expected one view interaction")
}

func TestMountBookNotFound(t *testing.T) {
	srv := newBookServer(client.Book{ID: 7, Title: "Dune"})
	v, r := newTestView(t, srv)

	require.NoError(t, r.Navigate(router.StateBookDetail, router.Params{BookID: 9}))

	_, ok := v.Book()
	assert.False(t, ok, "a missing book must not be loaded")
}

func TestMountHistoryFailureStillRenders(t *testing.T) {
	srv := newBookServer(client.Book{ID: 7, Title: "Dune"})
	srv.historyFail = true

	v, r := newTestView(t, srv)

	require.NoError(t, r.Navigate(router.StateBookDetail, router.Params{BookID: 7}))

	_, ok := v.Book()
	assert.True(t, ok, "the view must render without the history")
	assert.Equal(t, interactions.Entry{}, v.Entry(), "the entry falls back to defaults")
}

func TestLike(t *testing.T) {
	srv := newBookServer(client.Book{ID: 7, Title: "Dune"})
	v, r := newTestView(t, srv)
	require.NoError(t, r.Navigate(router.StateBookDetail, router.Params{BookID: 7}))

	require.NoError(t, v.Like())
	assert.True(t, v.Entry().Liked, "the entry flips after server confirmation")
	assert.Equal(t, 1, srv.writeCount(interactions.TypeLike), "write count mismatch")

	// Liking an already-liked book is a client-side no-op
	require.NoError(t, v.Like())
	assert.Equal(t, 1, srv.writeCount(interactions.TypeLike), "no network call for a repeated like")
}

func TestLikeFailureLeavesState(t *testing.T) {
	srv := newBookServer(client.Book{ID: 7, Title: "Dune"})
	srv.writeFail = true

	v, r := newTestView(t, srv)
	require.NoError(t, r.Navigate(router.StateBookDetail, router.Params{BookID: 7}))

	assert.Error(t, v.Like(), "a rejected write surfaces an error")
	assert.False(t, v.Entry().Liked, "the entry must not flip without confirmation")
}

func TestBookmark(t *testing.T) {
	srv := newBookServer(client.Book{ID: 7, Title: "Dune"})
	v, r := newTestView(t, srv)
	require.NoError(t, r.Navigate(router.StateBookDetail, router.Params{BookID: 7}))

	require.NoError(t, v.Bookmark())
	require.NoError(t, v.Bookmark())

	assert.True(t, v.Entry().Bookmarked, "the entry flips after server confirmation")
	assert.Equal(t, 1, srv.writeCount(interactions.TypeBookmark), "no network call for a repeated bookmark")
}

func TestRate(t *testing.T) {
	srv := newBookServer(client.Book{ID: 7, Title: "Dune"})
	v, r := newTestView(t, srv)
	require.NoError(t, r.Navigate(router.StateBookDetail, router.Params{BookID: 7}))

	assert.Error(t, v.Rate(0), "ratings below one are invalid")
	assert.Error(t, v.Rate(6), "ratings above five are invalid")
	assert.Equal(t, 0, srv.writeCount(interactions.TypeRate), "invalid ratings never reach the server")

	require.NoError(t, v.Rate(4))
	assert.Equal(t, 4, v.Entry().Rating, "rating mismatch")

	// Re-submitting the confirmed rating is a client-side no-op
	require.NoError(t, v.Rate(4))
	assert.Equal(t, 1, srv.writeCount(interactions.TypeRate), "no network call for the same rating")

	require.NoError(t, v.Rate(2))
	assert.Equal(t, 2, v.Entry().Rating, "a changed rating goes through")
	assert.Equal(t, 2, srv.writeCount(interactions.TypeRate), "write count mismatch")
}

func TestActionsWithoutBook(t *testing.T) {
	srv := newBookServer(client.Book{ID: 7, Title: "Dune"})
	v, r := newTestView(t, srv)
	require.NoError(t, r.Navigate(router.StateBookDetail, router.Params{BookID: 9}))

	assert.Error(t, v.Like(), "liking without a loaded book must fail")
	assert.Error(t, v.Bookmark(), "bookmarking without a loaded book must fail")
	assert.Error(t, v.Rate(3), "rating without a loaded book must fail")
}
