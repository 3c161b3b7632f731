//
//  Copyright © Manetu Inc. All rights reserved.
//
// shared between pkg/core and internal/core, and thus must be in a separate package to avoid circular dependencies

package options

import (
	"github.com/manetu/snowsync/internal/logging"
	"github.com/manetu/snowsync/pkg/core/config"
	"github.com/manetu/snowsync/pkg/core/directory"
	"github.com/manetu/snowsync/pkg/core/warehouse"
)

var logger = logging.GetLogger("snowsync")
var agent = "snowsync"

// EngineOptions defines the configuration options for initializing a sync
// engine, including the directory and warehouse collaborators.
type EngineOptions struct {
	Directory directory.Source
	Warehouse warehouse.Client
}

// EngineOptionsFunc is a function that modifies EngineOptions.
type EngineOptionsFunc func(*EngineOptions)

// WithDirectory configures the directory source for the engine.
func WithDirectory(source directory.Source) EngineOptionsFunc {
	return func(o *EngineOptions) {
		if config.VConfig.GetBool(config.MockEnabled) {
			logger.Warn(agent, "WithDirectory", "Ignoring directory source as mock mode is enabled")
		} else {
			o.Directory = source
		}
	}
}

// WithWarehouse configures the warehouse client for the engine.
func WithWarehouse(client warehouse.Client) EngineOptionsFunc {
	return func(o *EngineOptions) {
		if config.VConfig.GetBool(config.MockEnabled) {
			logger.Warn(agent, "WithWarehouse", "Ignoring warehouse client as mock mode is enabled")
		} else {
			o.Warehouse = client
		}
	}
}
