//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"github.com/manetu/snowsync/pkg/common"
	"github.com/manetu/snowsync/pkg/core/model"
	"github.com/manetu/snowsync/pkg/core/plan"
)

// ReconcileUsers diffs the desired federated user set against the
// partitioned current users and emits the user lifecycle actions.
//
// Logins the directory expects but the warehouse lacks become CreateUser,
// or EnableUser when a disabled federated user of that name already
// exists. If any are found while CreateMissingUsers is off, the run
// aborts naming the offending logins.
//
// Enabled federated users absent from every managed group become
// DisableUser only when DisableRemovedUsers is on; otherwise they stay
// enabled and merely lose their grants.
func ReconcileUsers(desired *model.DesiredState, current *model.CurrentState, settings Settings) ([]plan.Action, error) {
	wanted := desired.Logins()

	// Locally-credentialed users are out of management scope even when a
	// directory group names them.
	if conflicts := wanted.Intersect(current.NonFederated); conflicts.Cardinality() > 0 {
		logger.Warnf(agent, "users",
			"directory groups name locally-credentialed users %v; leaving them untouched",
			model.Sorted(conflicts))
		wanted = wanted.Difference(current.NonFederated)
	}

	missing := wanted.Difference(current.FederatedEnabled)
	superfluous := current.FederatedEnabled.Difference(wanted)

	if missing.Cardinality() > 0 && !settings.CreateMissingUsers {
		return nil, common.NewPolicyError(
			"users present in the directory are missing from the warehouse and user creation is disabled",
			model.Sorted(missing)...)
	}

	var actions []plan.Action
	for _, login := range model.Sorted(missing) {
		kind := plan.CreateUser
		if current.FederatedDisabled.Contains(login) {
			kind = plan.EnableUser
		}
		actions = append(actions, plan.Action{Kind: kind, User: login})
	}

	if settings.DisableRemovedUsers {
		for _, login := range model.Sorted(superfluous) {
			actions = append(actions, plan.Action{Kind: plan.DisableUser, User: login})
		}
	} else if superfluous.Cardinality() > 0 {
		logger.Infof(agent, "users",
			"%d federated users are no longer in any managed group; disable-removed-users is off, revoking grants only",
			superfluous.Cardinality())
	}

	return actions, nil
}
