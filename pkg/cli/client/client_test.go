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

package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nextread/nextread/pkg/cli/context"
	"github.com/nextread/nextread/pkg/cli/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSession is a Session with scripted refresh behavior
type stubSession struct {
	mu           sync.Mutex
	token        string
	refreshedTok string
	refreshErr   error
	refreshCalls int
	clearCalls   int
}

func (s *stubSession) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token
}

func (s *stubSession) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshCalls++
	if s.refreshErr != nil {
		return s.refreshErr
	}

	s.token = s.refreshedTok

	return nil
}

func (s *stubSession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearCalls++
	s.token = ""

	return nil
}

func newTestClient(serverURL string, sess Session) *Client {
	ctx := context.Ctx{
		APIEndpoint: serverURL,
		Version:     "test",
		ClientID:    "test-client-id",
	}

	return New(ctx, sess)
}

func TestDoSetsHeaders(t *testing.T) {
	var gotAuth, gotVersion, gotClientID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("CLI-Version")
		gotClientID = r.Header.Get("X-Client-ID")
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &stubSession{token: "tok-1"})

	var out map[string]interface{}
	err := c.do("GET", "/books/1", "", &out)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth, "authorization header mismatch")
	assert.Equal(t, "test", gotVersion, "version header mismatch")
	assert.Equal(t, "test-client-id", gotClientID, "client id header mismatch")
}

func TestDoOmitsBearerWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &stubSession{})

	var out map[string]interface{}
	err := c.do("GET", "/books", "", &out)
	require.NoError(t, err)

	assert.Equal(t, "", gotAuth, "authorization header should be absent")
}

func TestDoRefreshesOnceOn401(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Token expired"}`))
			return
		}

		w.Write([]byte(`{"id": 42, "title": "Dune"}`))
	}))
	defer server.Close()

	sess := &stubSession{token: "stale", refreshedTok: "fresh"}
	c := newTestClient(server.URL, sess)

	book, err := c.GetBook(42)
	require.NoError(t, err)

	assert.Equal(t, 42, book.ID, "book id mismatch")
	assert.Equal(t, 2, requests, "request count mismatch")
	assert.Equal(t, 1, sess.refreshCalls, "refresh call count mismatch")
	assert.Equal(t, 0, sess.clearCalls, "clear call count mismatch")
}

func TestDoRefreshFailure(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sess := &stubSession{token: "stale", refreshErr: errors.New("refresh token revoked")}
	c := newTestClient(server.URL, sess)

	_, err := c.GetBook(1)

	assert.Equal(t, ErrAuthExpired, errors.Cause(err), "error mismatch")
	assert.Equal(t, 1, requests, "request count mismatch")
	assert.Equal(t, 1, sess.refreshCalls, "refresh call count mismatch")
	assert.Equal(t, 1, sess.clearCalls, "clear call count mismatch")
}

func TestDoRetryStillUnauthorized(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sess := &stubSession{token: "stale", refreshedTok: "still-bad"}
	c := newTestClient(server.URL, sess)

	_, err := c.GetBook(1)

	assert.Equal(t, ErrAuthExpired, errors.Cause(err), "error mismatch")
	// Exactly one retry: the protocol never loops
	assert.Equal(t, 2, requests, "request count mismatch")
	assert.Equal(t, 1, sess.refreshCalls, "refresh call count mismatch")
	assert.Equal(t, 1, sess.clearCalls, "clear call count mismatch")
}

func TestDoForbiddenDoesNotRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "Admin access required"}`))
	}))
	defer server.Close()

	sess := &stubSession{token: "tok-1"}
	c := newTestClient(server.URL, sess)

	_, err := c.GetBook(1)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr), "expected a RequestError, got %v", err)
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode, "status code mismatch")
	assert.Equal(t, "Admin access required", reqErr.Message, "message mismatch")
	assert.Equal(t, 0, sess.refreshCalls, "a 403 must not trigger the refresh protocol")
	assert.Equal(t, 0, sess.clearCalls, "a 403 must not tear down the session")
}

func TestDoErrorWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &stubSession{token: "tok-1"})

	_, err := c.GetBook(1)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr), "expected a RequestError, got %v", err)
	assert.Equal(t, "Error 500", reqErr.Message, "message mismatch")
}

func TestDoMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &stubSession{token: "tok-1"})

	_, err := c.GetBook(1)

	assert.Equal(t, ErrMalformedResponse, errors.Cause(err), "error mismatch")
}

func TestListBooksQueryParams(t *testing.T) {
	testCases := []struct {
		name     string
		query    ListBooksQuery
		expected string
	}{
		{
			name:     "page only",
			query:    ListBooksQuery{Page: 2, PageSize: 20},
			expected: "page=2&page_size=20",
		},
		{
			name:     "with search",
			query:    ListBooksQuery{Page: 1, PageSize: 10, Search: "dune"},
			expected: "page=1&page_size=10&search=dune",
		},
		{
			name:     "with genre and search",
			query:    ListBooksQuery{Page: 1, PageSize: 10, Search: "dune", Genre: "sci-fi"},
			expected: "genre=sci-fi&page=1&page_size=10&search=dune",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				w.Write([]byte(`{"books": [], "total": 0, "page": 1, "page_size": 10}`))
			}))
			defer server.Close()

			c := newTestClient(server.URL, &stubSession{token: "tok-1"})

			_, err := c.ListBooks(tc.query)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, gotQuery, "query string mismatch")
		})
	}
}

func TestCreateInteractionPayload(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody = map[string]interface{}{}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id": 1, "book_id": 7, "interaction_type": "rate", "rating": 4}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &stubSession{token: "tok-1"})

	_, err := c.CreateInteraction(7, "rate", 4)
	require.NoError(t, err)

	assert.Equal(t, float64(7), gotBody["book_id"], "book id mismatch")
	assert.Equal(t, "rate", gotBody["interaction_type"], "interaction type mismatch")
	assert.Equal(t, float64(4), gotBody["rating"], "rating mismatch")

	_, err = c.CreateInteraction(7, "like", 0)
	require.NoError(t, err)

	_, ok := gotBody["rating"]
	assert.False(t, ok, "a like must not carry a rating")
}

func TestAuthPostRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Incorrect email or password"}`))
	}))
	defer server.Close()

	sess := &stubSession{}
	c := newTestClient(server.URL, sess)

	_, err := c.Login("user@example.com", "wrongpassword")

	assert.Equal(t, session.ErrAuthRejected, errors.Cause(err), "error mismatch")
	// A credential rejection is final; the refresh protocol must not run
	assert.Equal(t, 0, sess.refreshCalls, "refresh call count mismatch")
}

func TestAuthPostSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path, "path mismatch")
		w.Write([]byte(`{"access_token": "at-1", "refresh_token": "rt-1"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, &stubSession{})

	pair, err := c.Login("user@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "at-1", pair.AccessToken, "access token mismatch")
	assert.Equal(t, "rt-1", pair.RefreshToken, "refresh token mismatch")
}

func TestNoContentResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(server.URL, &stubSession{token: "tok-1"})

	err := c.do("DELETE", "/interactions/1", "", nil)
	assert.NoError(t, err, "deleting should succeed")
}
