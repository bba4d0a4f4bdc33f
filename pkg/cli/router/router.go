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

// Package router drives navigation between the client's views. It is a
// small state machine: navigating mounts the target view and runs its
// initial data load. There is no history stack.
package router

import (
	"sync"

	"github.com/pkg/errors"
)

// State identifies a view
type State int

// The navigable states
const (
	StateUnauthenticated State = iota
	StateDiscover
	StateBookDetail
	StateRecommendations
	StateLibrary
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateDiscover:
		return "discover"
	case StateBookDetail:
		return "book"
	case StateRecommendations:
		return "recommendations"
	case StateLibrary:
		return "library"
	}

	return "unknown"
}

// Params carries view-specific navigation parameters
type Params struct {
	BookID int
}

// Nav describes one entry into a view
type Nav struct {
	Params Params
	Guard  Guard
}

// View is a navigable screen. Mount loads and renders the view's initial
// data; Unmount releases transient view state. Views render their own load
// failures in place; Mount errors are reserved for unexpected conditions.
type View interface {
	Mount(nav Nav) error
	Unmount()
}

// Guard gates state mutations from asynchronous loads. In-flight requests
// are never cancelled by navigation, so a view must apply late-arriving
// results through the guard, which discards them once the view has been
// superseded.
type Guard struct {
	r   *Router
	gen uint64
}

// Current reports whether the guarded view is still the active one
func (g Guard) Current() bool {
	g.r.mu.Lock()
	defer g.r.mu.Unlock()

	return g.r.gen == g.gen
}

// Apply runs fn only if the guarded view is still the active one, and
// reports whether it ran. fn runs with the router lock held, so it must not
// navigate.
func (g Guard) Apply(fn func()) bool {
	g.r.mu.Lock()
	defer g.r.mu.Unlock()

	if g.r.gen != g.gen {
		return false
	}

	fn()

	return true
}

// Router holds the registered views and the active state
type Router struct {
	mu      sync.Mutex
	views   map[State]View
	current State
	active  View
	gen     uint64
}

// New returns a router with no views registered
func New() *Router {
	return &Router{views: map[State]View{}}
}

// Register adds a view for the given state
func (r *Router) Register(s State, v View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views[s] = v
}

// Current returns the active state
func (r *Router) Current() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// Navigate switches to the target state and runs its initial data load.
// Navigating to the current state again simply re-runs the load. Pending
// loads from the previous view are not cancelled; their results are dropped
// by the guard they were issued under.
func (r *Router) Navigate(s State, p Params) error {
	r.mu.Lock()
	v, ok := r.views[s]
	if !ok {
		r.mu.Unlock()
		return errors.Errorf("no view registered for state %s", s)
	}

	if r.active != nil {
		r.active.Unmount()
	}

	r.gen++
	r.current = s
	r.active = v
	nav := Nav{Params: p, Guard: Guard{r: r, gen: r.gen}}
	r.mu.Unlock()

	return v.Mount(nav)
}
