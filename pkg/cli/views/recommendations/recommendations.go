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

// Package recommendations implements the personalized top-N view
package recommendations

import (
	"sync"

	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/output"
	"github.com/nextread/nextread/pkg/cli/router"
)

// View is the recommendations view
type View struct {
	client *client.Client
	topN   int

	mu      sync.Mutex
	recs    []client.RecommendedBook
	loadErr error
}

// New returns a recommendations view that requests the given number of picks
func New(c *client.Client, topN int) *View {
	return &View{client: c, topN: topN}
}

// Mount loads the ranked recommendation list. An empty list is not an
// error: the engine simply has too little signal yet, so the view shows a
// call-to-action back to discovery instead.
func (v *View) Mount(nav router.Nav) error {
	resp, err := v.client.TopRecommendations(v.topN)

	nav.Guard.Apply(func() {
		v.mu.Lock()
		v.recs = resp.Recommendations
		v.loadErr = err
		v.mu.Unlock()

		if err != nil {
			output.LoadError("recommendations", err)
			return
		}

		if len(resp.Recommendations) == 0 {
			output.NoRecommendations()
			return
		}

		output.Recommendations(resp.Recommendations)
	})

	return nil
}

// Unmount is a no-op; the view keeps no resources
func (v *View) Unmount() {}

// Recommendations returns the loaded list
func (v *View) Recommendations() []client.RecommendedBook {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.recs
}

// LoadErr returns the error of the last load, if it failed
func (v *View) LoadErr() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.loadErr
}
