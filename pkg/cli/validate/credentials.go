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

// Package validate checks user-supplied credentials before they are sent to
// the server. The rules mirror the server's own validation so that obvious
// mistakes fail fast without a round trip.
package validate

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Validation errors
var (
	ErrEmailInvalid    = errors.New("email is not a valid address")
	ErrUsernameInvalid = errors.New("username must be 3-50 characters of letters, digits or underscores")
	ErrPasswordInvalid = errors.New("password must be 8-128 characters")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var v = newValidator()

func newValidator() *validator.Validate {
	ret := validator.New()

	// Always nil: the pattern is static and the tag name is unique
	_ = ret.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return ret
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=128"`
}

type registrationInput struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=50,username_chars"`
	Password string `validate:"required,min=8,max=128"`
}

// Login validates login credentials
func Login(email, password string) error {
	err := v.Struct(loginInput{Email: email, Password: password})

	return friendlyError(err)
}

// Registration validates registration data
func Registration(email, username, password string) error {
	err := v.Struct(registrationInput{Email: email, Username: username, Password: password})

	return friendlyError(err)
}

// friendlyError converts the first field failure into a message suitable for
// the terminal
func friendlyError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	switch fieldErrs[0].Field() {
	case "Email":
		return ErrEmailInvalid
	case "Username":
		return ErrUsernameInvalid
	case "Password":
		return ErrPasswordInvalid
	}

	return err
}
