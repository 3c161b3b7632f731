//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package core provides the primary interface for snowsync, a one-way
// reconciliation engine that converges Snowflake users, roles, and role
// grants onto Active Directory security group membership.
//
// Each [SyncEngine.Run] performs a single pass: snapshot both systems,
// compute the minimal ordered change plan, and apply it inside one
// transaction-framed statement block (or render it in dry-run mode). The
// directory is always the source of truth; nothing ever flows back into it.
//
// # Quick Start
//
// Create an engine with default options (fixture-backed collaborators):
//
//	engine, err := core.NewSyncEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	outcome, err := engine.Run(ctx)
//
// # Configuration
//
// Production collaborators are supplied via functional options:
//
//	engine, err := core.NewSyncEngine(
//	    options.WithDirectory(ldapSource),
//	    options.WithWarehouse(snowflakeClient),
//	)
//
// NewSyncEngine loads configuration from environment variables and config
// files before initializing the engine. See the [config] package for
// details.
package core

import (
	"context"

	"github.com/pkg/errors"

	"github.com/manetu/snowsync/internal/core"
	"github.com/manetu/snowsync/internal/logging"
	"github.com/manetu/snowsync/pkg/core/config"
	dirmock "github.com/manetu/snowsync/pkg/core/directory/mock"
	"github.com/manetu/snowsync/pkg/core/options"
	"github.com/manetu/snowsync/pkg/core/plan"
	whmock "github.com/manetu/snowsync/pkg/core/warehouse/mock"
)

var logger = logging.GetLogger("snowsync")
var agent = "snowsync"

// SyncEngine is the primary interface for running reconciliation passes.
//
// Implementations are safe for sequential reuse; each Run operates on a
// fresh snapshot of both systems and holds no state between passes.
type SyncEngine interface {
	// Run executes one reconciliation pass and returns its outcome.
	//
	// A returned error means the run aborted before any mutating statement
	// reached the warehouse. A nil error with [plan.StateNoop] means both
	// systems were already converged.
	Run(ctx context.Context) (*plan.Outcome, error)

	// Close releases the directory and warehouse connections.
	Close() error
}

// SyncEngineImpl is the default implementation of the [SyncEngine]
// interface.
//
// Use [NewSyncEngine] to create a properly initialized instance.
type SyncEngineImpl struct {
	instance *core.Engine
	opts     *options.EngineOptions
}

// NewSyncEngine creates and initializes a new [SyncEngine] instance.
//
// By default, the engine runs against fixture-backed mock collaborators.
// Use functional options to configure production collaborators:
//
//	engine, err := core.NewSyncEngine(
//	    options.WithDirectory(ldapSource),
//	    options.WithWarehouse(snowflakeClient),
//	)
//
// Returns an error if configuration loading fails.
func NewSyncEngine(engineOptions ...options.EngineOptionsFunc) (SyncEngine, error) {
	err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "error loading config")
	}

	opts := &options.EngineOptions{
		Directory: dirmock.New(),
		Warehouse: whmock.New(),
	}
	for _, o := range engineOptions {
		o(opts)
	}

	settings := core.Settings{
		OU:                  config.VConfig.GetString(config.LdapOU),
		LoginAttribute:      config.VConfig.GetString(config.LoginAttribute),
		RolePrefix:          config.VConfig.GetString(config.RolePrefix),
		StripPrefix:         config.VConfig.GetBool(config.StripPrefix),
		CreateMissingUsers:  config.VConfig.GetBool(config.CreateMissingUsers),
		DisableRemovedUsers: config.VConfig.GetBool(config.DisableRemovedUsers),
		DryRun:              config.VConfig.GetBool(config.DryRun),
		Output:              config.VConfig.GetString(config.Output),
	}

	return &SyncEngineImpl{
		instance: core.New(opts.Directory, opts.Warehouse, settings),
		opts:     opts,
	}, nil
}

// Run executes one reconciliation pass and returns its outcome.
func (e *SyncEngineImpl) Run(ctx context.Context) (*plan.Outcome, error) {
	logger.Debug(agent, "Run", "Enter")
	defer logger.Debug(agent, "Run", "Exit")

	return e.instance.Run(ctx)
}

// Close releases both collaborator connections. The first error wins but
// both are always closed.
func (e *SyncEngineImpl) Close() error {
	derr := e.opts.Directory.Close()
	werr := e.opts.Warehouse.Close()
	if derr != nil {
		return derr
	}
	return werr
}
