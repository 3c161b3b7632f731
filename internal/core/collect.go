//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/manetu/snowsync/pkg/common"
	"github.com/manetu/snowsync/pkg/core/model"
)

// snapshot is the raw input to a single diff computation. It is assembled
// once per run and treated as consistent: if any read fails, the whole run
// aborts rather than reconciling against a partial snapshot.
type snapshot struct {
	Users  []model.WarehouseUser
	Groups []model.DirectoryGroup
}

// collect gathers the warehouse user listing and the directory group
// membership. The two reads have no data dependency on each other and run
// concurrently; the first failure cancels the other and aborts the run.
func (e *Engine) collect(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := e.warehouse.ListUsers(gctx)
		if err != nil {
			return common.NewCollectionError("listing warehouse users", err)
		}
		snap.Users = users
		return nil
	})

	g.Go(func() error {
		groups, err := e.directory.ListSecurityGroups(gctx, e.settings.OU)
		if err != nil {
			return common.NewCollectionError("listing directory security groups", err)
		}
		for i := range groups {
			members, err := e.directory.ResolveMembers(gctx, groups[i], e.settings.LoginAttribute)
			if err != nil {
				return common.NewCollectionError("resolving members of "+groups[i].DN, err)
			}
			groups[i].Members = members
		}
		snap.Groups = groups
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debugf(agent, "collect", "snapshot: %d warehouse users, %d directory groups",
		len(snap.Users), len(snap.Groups))
	return snap, nil
}

// collectGrants reads role existence and, for the managed roles that
// already exist, their current grants. Roles outside the desired mapping
// are never inspected.
func (e *Engine) collectGrants(ctx context.Context, managed []string) ([]string, []model.RoleGrant, error) {
	roles, err := e.warehouse.ListRoles(ctx)
	if err != nil {
		return nil, nil, common.NewCollectionError("listing warehouse roles", err)
	}

	existing := mapset.NewSet(roles...)
	var inspect []string
	for _, role := range managed {
		if existing.Contains(role) {
			inspect = append(inspect, role)
		}
	}

	grants, err := e.warehouse.ListGrantsOfRoles(ctx, inspect)
	if err != nil {
		return nil, nil, common.NewCollectionError("listing role grants", err)
	}

	return roles, grants, nil
}
