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

// Package browse implements the interactive browsing shell. It is a thin
// line-driven front over the router and the views: each input line maps to a
// navigation or a view operation.
package browse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nextread/nextread/pkg/cli/app"
	"github.com/nextread/nextread/pkg/cli/infra"
	"github.com/nextread/nextread/pkg/cli/log"
	"github.com/nextread/nextread/pkg/cli/router"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  nextread browse`

var helpText = `commands:
  search <text>   search books (discover)
  genre <name>    filter by genre, 'genre' alone clears it (discover)
  next, prev      page through results (discover)
  book <id>       open a book
  like            like the open book
  bookmark        bookmark the open book
  rate <1-5>      rate the open book
  recs            personalized recommendations
  library         your interaction history
  filter <type>   narrow the library (all, like, bookmark, rate, view)
  discover        back to discovery
  help            this text
  quit            leave
`

// NewCmd returns a new browse command
func NewCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "browse",
		Short:   "Browse books interactively",
		Example: example,
		RunE:    newRun(a),
	}

	return cmd
}

func newRun(a *app.App) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.Start(); err != nil {
			return errors.Wrap(err, "starting the app")
		}
		if a.Router.Current() == router.StateUnauthenticated {
			return nil
		}

		return repl(a, os.Stdin)
	}
}

// repl reads input lines and dispatches them until quit or EOF
func repl(a *app.App, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Printf("%s> ", a.Router.Current())

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return errors.Wrap(err, "reading input")
			}
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest := splitCommand(line)
		if verb == "quit" || verb == "exit" {
			return nil
		}

		if err := dispatch(a, verb, rest); err != nil {
			log.Errorf("%s\n", err.Error())
		}
	}
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}

	return parts[0], strings.TrimSpace(parts[1])
}

func dispatch(a *app.App, verb, rest string) error {
	switch verb {
	case "help":
		log.Plain(helpText)
		return nil
	case "discover":
		return a.Router.Navigate(router.StateDiscover, router.Params{})
	case "recs":
		return a.Router.Navigate(router.StateRecommendations, router.Params{})
	case "library":
		return a.Router.Navigate(router.StateLibrary, router.Params{})
	case "book":
		bookID, err := strconv.Atoi(rest)
		if err != nil {
			return errors.New("usage: book <id>")
		}
		return a.Router.Navigate(router.StateBookDetail, router.Params{BookID: bookID})
	case "search", "genre", "next", "prev":
		return dispatchDiscover(a, verb, rest)
	case "like", "bookmark", "rate":
		return dispatchBook(a, verb, rest)
	case "filter":
		if a.Router.Current() != router.StateLibrary {
			return errors.New("open the library first")
		}
		return a.Library.SetFilter(rest)
	}

	return errors.Errorf("unknown command %q, try 'help'", verb)
}

func dispatchDiscover(a *app.App, verb, rest string) error {
	if a.Router.Current() != router.StateDiscover {
		return errors.New("go to 'discover' first")
	}

	switch verb {
	case "search":
		a.Discover.SetSearchInput(rest)
	case "genre":
		a.Discover.SetGenre(rest)
	case "next":
		a.Discover.NextPage()
	case "prev":
		a.Discover.PrevPage()
	}

	return nil
}

func dispatchBook(a *app.App, verb, rest string) error {
	if a.Router.Current() != router.StateBookDetail {
		return errors.New("open a book first")
	}

	switch verb {
	case "like":
		return a.BookDetail.Like()
	case "bookmark":
		return a.BookDetail.Bookmark()
	case "rate":
		rating, err := strconv.Atoi(rest)
		if err != nil {
			return errors.New("usage: rate <1-5>")
		}
		return a.BookDetail.Rate(rating)
	}

	return nil
}
