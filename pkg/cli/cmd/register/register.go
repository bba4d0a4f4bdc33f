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

package register

import (
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
  nextread register`

// NewCmd returns a new register command
func NewCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account and login",
		Example: example,
		RunE:    newRun(a),
	}

	return cmd
}

func newRun(a *app.App) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		var email, username, password, passwordConfirm string
		if err := ui.PromptInput("email", &email); err != nil {
			return errors.Wrap(err, "getting email input")
		}
		if err := ui.PromptInput("username", &username); err != nil {
			return errors.Wrap(err, "getting username input")
		}
		if err := ui.PromptPassword("password", &password); err != nil {
			return errors.Wrap(err, "getting password input")
		}
		if err := ui.PromptPassword("confirm password", &passwordConfirm); err != nil {
			return errors.Wrap(err, "getting password confirmation input")
		}

		if password != passwordConfirm {
			log.Error("passwords do not match\n")
			return nil
		}
		if err := validate.Registration(email, username, password); err != nil {
			log.Errorf("%s\n", err.Error())
			return nil
		}

		err := a.Session.Register(email, username, password)
		if errors.Cause(err) == session.ErrAuthRejected {
			log.Errorf("registration rejected: %s\n", err.Error())
			return nil
		} else if err != nil {
			return errors.Wrap(err, "registering")
		}

		log.Successf("account created, logged in as %s\n", email)

		return nil
	}
}
