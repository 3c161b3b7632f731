//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package warehouse defines the interface for the target warehouse client.
//
// A client is responsible for listing users, roles, and role grants, and
// for executing the statement block produced by the plan builder. All
// tabular parsing stays inside the implementation; the engine only ever
// sees the typed results.
//
// The following client implementations are available:
//   - [snowflake]: Snowflake via gosnowflake and database/sql
//   - [mock]: Fixture-backed client, useful for testing
package warehouse

import (
	"context"

	"github.com/manetu/snowsync/pkg/core/model"
)

// Client provides access to warehouse identity state and statement
// execution.
//
// All methods are synchronous and blocking; a failure from any method
// aborts the surrounding reconciliation run.
type Client interface {
	// ListUsers returns every warehouse user with its credential and
	// disabled flags.
	ListUsers(ctx context.Context) ([]model.WarehouseUser, error)

	// ListRoles returns every warehouse role name.
	ListRoles(ctx context.Context) ([]string, error)

	// ListGrantsOfRoles returns all grants of the named roles, both
	// USER- and ROLE-kind. Classification and filtering are the
	// engine's concern.
	ListGrantsOfRoles(ctx context.Context, roles []string) ([]model.RoleGrant, error)

	// Execute runs a begin/commit-framed statement block inside the
	// warehouse's own transaction semantics: either every statement
	// commits or none do.
	Execute(ctx context.Context, block string) error

	// Close releases the underlying connection.
	Close() error
}
