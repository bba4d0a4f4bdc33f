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

// Package consts provides definitions of constants
package consts

var (
	// AppDirName is the name of the directory containing nextread files
	AppDirName = "nextread"
	// DBFileName is a filename for the nextread SQLite database
	DBFileName = "nextread.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "nextreadrc"

	// SystemRefreshToken is the key for the refresh token in the system table.
	// It is the only durable credential; the access token lives in memory only.
	SystemRefreshToken = "refresh_token"
	// SystemClientID is the key for the generated client instance id
	SystemClientID = "client_id"
)
