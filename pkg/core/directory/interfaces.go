//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package directory defines the interface for directory-service sources.
//
// A source is responsible for discovering the security groups under the
// target organizational unit and resolving each group to its effective
// member login names. The engine treats the source as read-only: no
// snowsync run ever mutates directory state.
//
// The following source implementations are available:
//   - [ldap]: Active Directory over LDAP via go-ldap
//   - [mock]: Fixture-backed source, useful for testing
package directory

import (
	"context"

	"github.com/manetu/snowsync/pkg/core/model"
)

// Source provides access to directory group and membership data.
//
// All methods are synchronous and blocking; a failure from any method
// aborts the surrounding reconciliation run.
type Source interface {
	// ListSecurityGroups returns descriptors for every security group
	// directly under the given organizational unit. The returned groups
	// carry no members; use [Source.ResolveMembers].
	ListSecurityGroups(ctx context.Context, ou string) ([]model.DirectoryGroup, error)

	// ResolveMembers returns the group's effective member login names:
	// nested groups recursively expanded to individual accounts, disabled
	// accounts dropped, accounts without a value for loginAttribute
	// dropped, duplicates removed.
	ResolveMembers(ctx context.Context, group model.DirectoryGroup, loginAttribute string) ([]string, error)

	// Close releases the underlying connection.
	Close() error
}
