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

// Package infra provides operations and definitions for the
// local infrastructure for nextread
package infra

import (
	"fmt"
	"time"

	"github.com/nextread/nextread/pkg/cli/client"
	"github.com/nextread/nextread/pkg/cli/config"
	"github.com/nextread/nextread/pkg/cli/consts"
	"github.com/nextread/nextread/pkg/cli/context"
	"github.com/nextread/nextread/pkg/cli/database"
	"github.com/nextread/nextread/pkg/cli/log"
	"github.com/nextread/nextread/pkg/cli/utils"
	"github.com/nextread/nextread/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:8000"
)

// RunEFunc is a function type of nextread commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return fmt.Sprintf("%s/%s/%s", paths.Data, consts.AppDirName, consts.DBFileName)
}

// newBaseCtx creates a minimal context with paths and database connection.
// This base context is used for file and database initialization before
// being enriched with config values by setupCtx.
func newBaseCtx(versionTag, customDBPath string) (context.Ctx, error) {
	paths := context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
		Cache:  dirs.CacheHome,
	}

	if err := context.InitDirs(paths); err != nil {
		return context.Ctx{}, errors.Wrap(err, "creating the nextread dirs")
	}

	dbPath := getDBPath(paths, customDBPath)

	db, err := database.Open(dbPath)
	if err != nil {
		return context.Ctx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.Ctx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
	}

	return ctx, nil
}

// Init initializes the nextread environment and returns a new context.
// apiEndpoint is used when creating a new config file (e.g., from ldflags during tests)
func Init(versionTag, apiEndpoint, dbPath string) (*context.Ctx, error) {
	ctx, err := newBaseCtx(versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		return nil, errors.Wrap(err, "generating the config file")
	}

	if err := database.InitSchema(ctx.DB); err != nil {
		return nil, errors.Wrap(err, "initializing database")
	}
	if err := initClientID(ctx.DB); err != nil {
		return nil, errors.Wrap(err, "initializing client id")
	}

	ctx, err = setupCtx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("api endpoint: %s\n", ctx.APIEndpoint)

	return &ctx, nil
}

// setupCtx enriches the base context with values from the config file and the
// database. This is called after files and database have been initialized.
func setupCtx(ctx context.Ctx) (context.Ctx, error) {
	var clientID string
	if err := database.GetSystem(ctx.DB, consts.SystemClientID, &clientID); err != nil {
		return ctx, errors.Wrap(err, "finding client id")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	ret := context.Ctx{
		Paths:          ctx.Paths,
		Version:        ctx.Version,
		DB:             ctx.DB,
		ClientID:       clientID,
		APIEndpoint:    cf.APIEndpoint,
		PageSize:       cf.PageSize,
		SearchDebounce: time.Duration(cf.SearchDebounceMs) * time.Millisecond,
		HTTPClient:     client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}

// initClientID generates and stores an instance id if one does not exist yet.
// It identifies this installation to the server across sessions.
func initClientID(db *database.DB) error {
	var existing string
	err := database.GetSystem(db, consts.SystemClientID, &existing)
	if err == nil {
		return nil
	}
	if errors.Cause(err) != database.ErrSystemKeyNotFound {
		return errors.Wrap(err, "finding client id")
	}

	clientID, err := utils.GenerateUUID()
	if err != nil {
		return errors.Wrap(err, "generating client id")
	}
	if err := database.UpsertSystem(db, consts.SystemClientID, clientID); err != nil {
		return errors.Wrap(err, "storing client id")
	}

	return nil
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.Ctx, apiEndpoint string) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	cf := config.Config{
		APIEndpoint:      endpoint,
		PageSize:         config.DefaultPageSize,
		SearchDebounceMs: config.DefaultSearchDebounceMs,
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}
