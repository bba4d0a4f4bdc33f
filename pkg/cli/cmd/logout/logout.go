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

package logout

import (
	"github.com/nextread/nextread/pkg/cli/app"
	"github.com/nextread/nextread/pkg/cli/consts"
	"github.com/nextread/nextread/pkg/cli/database"
	"github.com/nextread/nextread/pkg/cli/infra"
	"github.com/nextread/nextread/pkg/cli/log"
	"github.com/nextread/nextread/pkg/cli/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  nextread logout`

// NewCmd returns a new logout command
func NewCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Logout and forget the stored session",
		Example: example,
		RunE:    newRun(a),
	}

	return cmd
}

// Do tears down the stored session
func Do(a *app.App) error {
	var token string
	err := database.GetSystem(a.Ctx.DB, consts.SystemRefreshToken, &token)
	if errors.Cause(err) == database.ErrSystemKeyNotFound {
		return session.ErrNotLoggedIn
	} else if err != nil {
		return errors.Wrap(err, "getting refresh token")
	}

	if err := a.Session.Clear(); err != nil {
		return errors.Wrap(err, "clearing session")
	}

	return nil
}

func newRun(a *app.App) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		err := Do(a)
		if errors.Cause(err) == session.ErrNotLoggedIn {
			log.Error("not logged in\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging out")
		}

		log.Success("logged out\n")

		return nil
	}
}
