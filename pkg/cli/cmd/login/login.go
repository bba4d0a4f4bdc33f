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

package login

import (
	"net/url"

	"github.com/nextread/nextread/pkg/cli/app"
	"github.com/nextread/nextread/pkg/cli/infra"
	"github.com/nextread/nextread/pkg/cli/log"
	"github.com/nextread/nextread/pkg/cli/session"
	"github.com/nextread/nextread/pkg/cli/ui"
	"github.com/nextread/nextread/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  nextread login`

// NewCmd returns a new login command
func NewCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Login to the server",
		Example: example,
		RunE:    newRun(a),
	}

	return cmd
}

// getServerDisplayURL returns the server origin suitable for display
func getServerDisplayURL(apiEndpoint string) string {
	u, err := url.Parse(apiEndpoint)
	if err != nil {
		return ""
	}
	if u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

func newRun(a *app.App) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if displayURL := getServerDisplayURL(a.Ctx.APIEndpoint); displayURL != "" {
			log.Infof("logging in to %s\n", displayURL)
		}

		var email, password string
		if err := ui.PromptInput("email", &email); err != nil {
			return errors.Wrap(err, "getting email input")
		}
		if err := ui.PromptPassword("password", &password); err != nil {
			return errors.Wrap(err, "getting password input")
		}

		if err := validate.Login(email, password); err != nil {
			log.Errorf("%s\n", err.Error())
			return nil
		}

		err := a.Session.Login(email, password)
		if errors.Cause(err) == session.ErrAuthRejected {
			log.Error("wrong email or password\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Successf("logged in as %s\n", email)

		return nil
	}
}
