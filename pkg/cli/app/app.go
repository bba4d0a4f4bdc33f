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

// Package app wires the client runtime together. The App struct is the
// explicit application state: it owns the session, the API client, the
// interaction store and the router, and passes them into the views. There
// are no package-level singletons.
package app

import (
	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/context"
	"github.com/nextread/nextread/pkg/cli/interactions"
	"github.com/nextread/nextread/pkg/cli/log"
	"github.com/nextread/nextread/pkg/cli/router"
	"github.com/nextread/nextread/pkg/cli/session"
	"github.com/nextread/nextread/pkg/cli/views/bookdetail"
	"github.com/nextread/nextread/pkg/cli/views/discover"
	"github.com/nextread/nextread/pkg/cli/views/library"
	"github.com/nextread/nextread/pkg/cli/views/recommendations"
	"github.com/pkg/errors"
)

// defaultTopN is the number of personalized recommendations requested
const defaultTopN = 10

// App is the root of the client runtime
type App struct {
	Ctx     context.Ctx
	Session *session.Manager
	Client  *client.Client
	Store   *interactions.Store
	Router  *router.Router

	Discover        *discover.View
	BookDetail      *bookdetail.View
	Recommendations *recommendations.View
	Library         *library.View
}

// New builds the application graph for the given runtime context
func New(ctx context.Ctx) (*App, error) {
	sess, err := session.NewManager(ctx.DB)
	if err != nil {
		return nil, errors.Wrap(err, "initializing session")
	}

	c := client.New(ctx, sess)
	sess.SetAuthAPI(c)

	store := interactions.NewStore()
	r := router.New()

	a := &App{
		Ctx:     ctx,
		Session: sess,
		Client:  c,
		Store:   store,
		Router:  r,

		Discover:        discover.New(c, ctx.PageSize, ctx.SearchDebounce),
		BookDetail:      bookdetail.New(c, store),
		Recommendations: recommendations.New(c, defaultTopN),
		Library:         library.New(c),
	}

	r.Register(router.StateUnauthenticated, unauthView{})
	r.Register(router.StateDiscover, a.Discover)
	r.Register(router.StateBookDetail, a.BookDetail)
	r.Register(router.StateRecommendations, a.Recommendations)
	r.Register(router.StateLibrary, a.Library)

	return a, nil
}

// Start restores the session and enters the initial state: discover when a
// session could be resumed, the unauthenticated entry otherwise.
func (a *App) Start() error {
	if a.Session.Restore() {
		return a.Router.Navigate(router.StateDiscover, router.Params{})
	}

	return a.Router.Navigate(router.StateUnauthenticated, router.Params{})
}

// unauthView is the entry shown when no session exists
type unauthView struct{}

func (unauthView) Mount(nav router.Nav) error {
	log.Info("not logged in\n")
	log.Plainf("run 'nextread login' or 'nextread register' to get started\n")

	return nil
}

func (unauthView) Unmount() {}
