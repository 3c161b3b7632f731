//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"github.com/manetu/snowsync/pkg/core/model"
	"github.com/manetu/snowsync/pkg/core/plan"
)

// ReconcileGrants diffs, per managed role, the desired member set against
// the role's current federated USER-kind grantees. Each role is treated
// independently: a missing role is created first, missing grantees are
// granted, superfluous grantees revoked. Roles outside the desired
// mapping are never inspected or mutated, and roles are never deleted.
func ReconcileGrants(desired *model.DesiredState, current *model.CurrentState) []plan.Action {
	var actions []plan.Action

	for _, role := range desired.RoleNames() {
		// Non-federated members are excluded from both sides of the
		// comparison; their grants are never touched.
		want := desired.Members[role].Difference(current.NonFederated)
		have := current.GranteesOf(role)

		if !current.Roles.Contains(role) {
			actions = append(actions, plan.Action{Kind: plan.CreateRole, Role: role})
		}

		for _, login := range model.Sorted(want.Difference(have)) {
			if login == "" || login == "null" {
				continue
			}
			actions = append(actions, plan.Action{Kind: plan.GrantRole, Role: role, User: login})
		}

		for _, login := range model.Sorted(have.Difference(want)) {
			actions = append(actions, plan.Action{Kind: plan.RevokeRole, Role: role, User: login})
		}
	}

	return actions
}
