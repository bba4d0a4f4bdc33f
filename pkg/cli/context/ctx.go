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

// Package context defines the nextread runtime context
package context

import (
	"net/http"
	"time"

	"github.com/nextread/nextread/pkg/cli/database"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// Ctx is a context holding the information of the current runtime.
// It is constructed once at startup and passed by value into commands;
// session state is owned separately by the app root, not by this struct.
type Ctx struct {
	Paths          Paths
	APIEndpoint    string
	Version        string
	DB             *database.DB
	ClientID       string
	PageSize       int
	SearchDebounce time.Duration
	HTTPClient     *http.Client
}
