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
	"github.com/nextread/nextread/pkg/cli/session"
	"github.com/pkg/errors"
)

// The auth endpoints never run the 401 refresh protocol: a 401 here means
// the credentials themselves were rejected, not that the session expired.

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

// Login requests a token pair for the given credentials
func (c *Client) Login(email, password string) (session.TokenPair, error) {
	payload, err := marshalPayload(loginPayload{Email: email, Password: password})
	if err != nil {
		return session.TokenPair{}, err
	}

	return c.authPost("/auth/login", payload)
}

// Register creates an account and returns its first token pair
func (c *Client) Register(email, username, password string) (session.TokenPair, error) {
	payload, err := marshalPayload(registerPayload{Email: email, Username: username, Password: password})
	if err != nil {
		return session.TokenPair{}, err
	}

	return c.authPost("/auth/register", payload)
}

// Refresh exchanges a refresh token for a fresh token pair. The server
// rotates the refresh token on every exchange.
func (c *Client) Refresh(refreshToken string) (session.TokenPair, error) {
	payload, err := marshalPayload(refreshPayload{RefreshToken: refreshToken})
	if err != nil {
		return session.TokenPair{}, err
	}

	return c.authPost("/auth/refresh", payload)
}

func (c *Client) authPost(path, payload string) (session.TokenPair, error) {
	res, err := c.send("POST", path, payload)
	if err != nil {
		return session.TokenPair{}, err
	}

	var pair session.TokenPair
	if err := readResponse(res, &pair); err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			return session.TokenPair{}, errors.Wrap(session.ErrAuthRejected, reqErr.Message)
		}
		return session.TokenPair{}, err
	}

	return pair, nil
}
