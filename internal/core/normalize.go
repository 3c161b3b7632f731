//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/manetu/snowsync/pkg/core/model"
)

// BuildDesiredState derives the role-to-members mapping from the directory
// groups. Groups whose name does not start with prefix are excluded
// entirely; when strip is set the prefix is removed once from each derived
// role name. Member lists are deduplicated; empty logins are dropped.
//
// When two groups collapse to the same role name after stripping, the
// later group's membership replaces the earlier one's. That matches the
// behavior this engine inherited and is surfaced as a warning; see
// DESIGN.md before relying on it.
func BuildDesiredState(groups []model.DirectoryGroup, prefix string, strip bool) *model.DesiredState {
	desired := model.NewDesiredState()
	origin := make(map[string]string)

	for _, g := range groups {
		if prefix != "" && !strings.HasPrefix(g.Name, prefix) {
			continue
		}

		name := g.Name
		if strip && prefix != "" {
			name = strings.TrimPrefix(name, prefix)
		}

		if prev, dup := origin[name]; dup {
			logger.Warnf(agent, "normalize",
				"groups %q and %q both derive role %q; keeping membership from %q",
				prev, g.DN, name, g.DN)
		}

		members := mapset.NewSet[string]()
		for _, m := range g.Members {
			if m != "" {
				members.Add(m)
			}
		}

		desired.Members[name] = members
		origin[name] = g.DN
	}

	return desired
}

// BuildCurrentState normalizes the warehouse snapshot: partitions users by
// class and indexes, per role, the grants relevant to reconciliation.
// ROLE-kind grants and grants to non-federated or unknown grantees are
// excluded here; the engine never revokes them.
func BuildCurrentState(users []model.WarehouseUser, roles []string, grants []model.RoleGrant) *model.CurrentState {
	current := model.NewCurrentState()

	for _, u := range users {
		switch u.Class() {
		case model.NonFederated:
			current.NonFederated.Add(u.Name)
		case model.FederatedEnabled:
			current.FederatedEnabled.Add(u.Name)
		case model.FederatedDisabled:
			current.FederatedDisabled.Add(u.Name)
		}
	}

	current.Roles.Append(roles...)

	for _, g := range grants {
		if g.Kind != model.GranteeUser {
			continue
		}
		if !current.FederatedEnabled.Contains(g.Grantee) && !current.FederatedDisabled.Contains(g.Grantee) {
			continue
		}

		set, ok := current.Grantees[g.Role]
		if !ok {
			set = mapset.NewSet[string]()
			current.Grantees[g.Role] = set
		}
		set.Add(g.Grantee)
	}

	return current
}
