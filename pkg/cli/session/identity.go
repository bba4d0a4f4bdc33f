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

package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the display identity carried in the access token claims
type Identity struct {
	UserID   string
	Role     string
	Username string
}

// DecodeIdentity extracts the display identity from the access token payload
// without verifying the signature. It exists purely so the client can show
// who is logged in; it must never be consulted for authorization. The
// boolean reports whether the token could be parsed.
func DecodeIdentity(token string) (Identity, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, false
	}

	var ident Identity
	if sub, err := claims.GetSubject(); err == nil {
		ident.UserID = sub
	}
	if role, ok := claims["role"].(string); ok {
		ident.Role = role
	}
	if username, ok := claims["username"].(string); ok {
		ident.Username = username
	}

	return ident, true
}
