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

package whoami

import (
	"github.com/nextread/nextread/pkg/cli/app"
	"github.com/nextread/nextread/pkg/cli/infra"
	"github.com/nextread/nextread/pkg/cli/log"
	"github.com/spf13/cobra"
)

var example = `
  nextread whoami`

// NewCmd returns a new whoami command
func NewCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "Show the identity of the current session",
		Example: example,
		RunE:    newRun(a),
	}

	return cmd
}

func newRun(a *app.App) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if !a.Session.Restore() {
			log.Error("not logged in\n")
			return nil
		}

		identity, ok := a.Session.Identity()
		if !ok {
			log.Error("could not read identity from the session\n")
			return nil
		}

		log.Plainf("user id: %s\n", identity.UserID)
		if identity.Username != "" {
			log.Plainf("username: %s\n", identity.Username)
		}
		if identity.Role != "" {
			log.Plainf("role: %s\n", identity.Role)
		}

		return nil
	}
}
