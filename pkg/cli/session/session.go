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

// Package session manages the user session: the in-memory access token, the
// durable refresh token and the display identity derived from the access
// token.
package session

import (
	"sync"

	"github.com/nextread/nextread/pkg/cli/consts"
	"github.com/nextread/nextread/pkg/cli/database"
	"github.com/pkg/errors"
)

// ErrAuthRejected is an error for credentials or registration data rejected
// by the server
var ErrAuthRejected = errors.New("rejected by the server")

// ErrNotLoggedIn is an error for operations that require a session when
// there is none
var ErrNotLoggedIn = errors.New("not logged in")

// TokenPair is an access/refresh token pair issued by the server. The
// refresh token is single-use; every refresh rotates both.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthAPI is the server auth surface the session manager drives. None of the
// calls carry a bearer token. Implementations return ErrAuthRejected when
// the server turns down the credentials or the refresh token.
type AuthAPI interface {
	Login(email, password string) (TokenPair, error)
	Register(email, username, password string) (TokenPair, error)
	Refresh(refreshToken string) (TokenPair, error)
}

// flight is one in-progress refresh shared by concurrent callers
type flight struct {
	done chan struct{}
	err  error
}

// Manager owns the session state. The access token is kept in memory only;
// the refresh token is persisted in the system table and is the single
// durable credential.
type Manager struct {
	db  *database.DB
	api AuthAPI

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	identity     Identity
	hasIdentity  bool
	inflight     *flight
}

// NewManager returns a session manager, loading any stored refresh token
func NewManager(db *database.DB) (*Manager, error) {
	m := &Manager{db: db}

	var token string
	err := database.GetSystem(db, consts.SystemRefreshToken, &token)
	if err != nil && errors.Cause(err) != database.ErrSystemKeyNotFound {
		return nil, errors.Wrap(err, "loading refresh token")
	}
	m.refreshToken = token

	return m, nil
}

// SetAuthAPI wires the server auth surface. It must be called before any
// operation that talks to the server.
func (m *Manager) SetAuthAPI(api AuthAPI) {
	m.api = api
}

// AccessToken returns the current in-memory access token, or an empty string
// when unauthenticated
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.accessToken
}

// Identity returns the display identity decoded from the access token. The
// boolean reports whether an identity is set. It carries no authorization
// weight; the server is the sole source of truth for roles.
func (m *Manager) Identity() (Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.identity, m.hasIdentity
}

// Restore attempts to silently resume a session from the stored refresh
// token. It reports whether the session is authenticated. Failure is the
// normal "not logged in" path and is never surfaced as an error.
func (m *Manager) Restore() bool {
	m.mu.Lock()
	token := m.refreshToken
	m.mu.Unlock()

	if token == "" {
		return false
	}

	return m.Refresh() == nil
}

// Login authenticates with the server and establishes a session
func (m *Manager) Login(email, password string) error {
	pair, err := m.api.Login(email, password)
	if err != nil {
		return err
	}

	if err := m.storeTokens(pair); err != nil {
		return errors.Wrap(err, "storing tokens")
	}

	return nil
}

// Register creates an account on the server and establishes a session
func (m *Manager) Register(email, username, password string) error {
	pair, err := m.api.Register(email, username, password)
	if err != nil {
		return err
	}

	if err := m.storeTokens(pair); err != nil {
		return errors.Wrap(err, "storing tokens")
	}

	return nil
}

// Refresh exchanges the stored refresh token for a fresh token pair. The
// refresh token rotates on every exchange, so concurrent callers share a
// single in-flight refresh instead of racing to consume the token.
func (m *Manager) Refresh() error {
	m.mu.Lock()
	if f := m.inflight; f != nil {
		m.mu.Unlock()
		<-f.done
		return f.err
	}

	f := &flight{done: make(chan struct{})}
	m.inflight = f
	token := m.refreshToken
	m.mu.Unlock()

	err := m.doRefresh(token)

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()

	f.err = err
	close(f.done)

	return err
}

func (m *Manager) doRefresh(token string) error {
	if token == "" {
		return ErrNotLoggedIn
	}

	pair, err := m.api.Refresh(token)
	if err != nil {
		if errors.Cause(err) == ErrAuthRejected {
			// The token has been consumed or revoked; the session is over.
			if clearErr := m.Clear(); clearErr != nil {
				return errors.Wrap(clearErr, "clearing session")
			}
		}
		return err
	}

	if err := m.storeTokens(pair); err != nil {
		return errors.Wrap(err, "storing tokens")
	}

	return nil
}

// Clear tears the session down: the in-memory access token and identity are
// dropped and the durable refresh token is removed. It is idempotent.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accessToken = ""
	m.refreshToken = ""
	m.identity = Identity{}
	m.hasIdentity = false

	if err := database.DeleteSystem(m.db, consts.SystemRefreshToken); err != nil {
		return errors.Wrap(err, "deleting refresh token")
	}

	return nil
}

// storeTokens adopts a token pair: the refresh token is persisted, the
// access token stays in memory and the identity is re-derived from it.
func (m *Manager) storeTokens(pair TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := database.UpsertSystem(m.db, consts.SystemRefreshToken, pair.RefreshToken); err != nil {
		return errors.Wrap(err, "persisting refresh token")
	}

	m.accessToken = pair.AccessToken
	m.refreshToken = pair.RefreshToken
	m.identity, m.hasIdentity = DecodeIdentity(pair.AccessToken)

	return nil
}
