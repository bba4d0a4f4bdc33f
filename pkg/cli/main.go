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

package main

import (
	"os"
	"strings"

	"github.com/nextread/nextread/pkg/cli/app"
	"github.com/nextread/nextread/pkg/cli/infra"
	"github.com/nextread/nextread/pkg/cli/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	// commands
	"github.com/nextread/nextread/pkg/cli/cmd/browse"
	"github.com/nextread/nextread/pkg/cli/cmd/login"
	"github.com/nextread/nextread/pkg/cli/cmd/logout"
	"github.com/nextread/nextread/pkg/cli/cmd/register"
	"github.com/nextread/nextread/pkg/cli/cmd/root"
	"github.com/nextread/nextread/pkg/cli/cmd/version"
	"github.com/nextread/nextread/pkg/cli/cmd/whoami"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

// parseFlagValue extracts the value of a string flag from command line
// arguments regardless of where it appears (before or after the subcommand).
// Returns an empty string if not found.
func parseFlagValue(args []string, name string) string {
	prefix := "--" + name + "="

	for i, arg := range args {
		if strings.HasPrefix(arg, prefix) {
			return strings.TrimPrefix(arg, prefix)
		}
		if arg == "--"+name && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

func main() {
	// Parse flags early: the database and the API client are built before
	// cobra parses anything, so --dbPath and --apiEndpoint can appear after
	// the subcommand and must be picked up by hand.
	dbPath := parseFlagValue(os.Args[1:], "dbPath")
	endpointOverride := parseFlagValue(os.Args[1:], "apiEndpoint")

	ctx, err := infra.Init(versionTag, apiEndpoint, dbPath)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}
	defer ctx.DB.Close()

	if endpointOverride != "" {
		ctx.APIEndpoint = endpointOverride
	}

	a, err := app.New(*ctx)
	if err != nil {
		panic(errors.Wrap(err, "initializing app"))
	}

	root.Register(login.NewCmd(a))
	root.Register(register.NewCmd(a))
	root.Register(logout.NewCmd(a))
	root.Register(whoami.NewCmd(a))
	root.Register(browse.NewCmd(a))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
