//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"

	"github.com/manetu/snowsync/pkg/core/model"
	"github.com/manetu/snowsync/pkg/core/plan"
)

func setOf(members ...string) mapset.Set[string] {
	return mapset.NewSet(members...)
}

func TestReconcileGrantsCreatesRoleBeforeGrants(t *testing.T) {
	desired := desiredWith("analyst", "alice@example.com")
	current := currentWith(model.WarehouseUser{Name: "alice@example.com"})

	actions := ReconcileGrants(desired, current)
	assert.Equal(t, []plan.Action{
		{Kind: plan.CreateRole, Role: "analyst"},
		{Kind: plan.GrantRole, Role: "analyst", User: "alice@example.com"},
	}, actions)
}

func TestReconcileGrantsGrantAndRevoke(t *testing.T) {
	desired := desiredWith("analyst", "alice@example.com")
	current := currentWith(
		model.WarehouseUser{Name: "alice@example.com"},
		model.WarehouseUser{Name: "stale@example.com"},
	)
	current.Roles.Add("analyst")
	current.Grantees["analyst"] = setOf("stale@example.com")

	actions := ReconcileGrants(desired, current)
	assert.Equal(t, []plan.Action{
		{Kind: plan.GrantRole, Role: "analyst", User: "alice@example.com"},
		{Kind: plan.RevokeRole, Role: "analyst", User: "stale@example.com"},
	}, actions)
}

func TestReconcileGrantsConvergedIsEmpty(t *testing.T) {
	desired := desiredWith("analyst", "alice@example.com")
	current := currentWith(model.WarehouseUser{Name: "alice@example.com"})
	current.Roles.Add("analyst")
	current.Grantees["analyst"] = setOf("alice@example.com")

	assert.Empty(t, ReconcileGrants(desired, current))
}

func TestReconcileGrantsNonFederatedMembersIgnored(t *testing.T) {
	// A grant held by a locally-credentialed user is never revoked, and a
	// directory group naming one never produces a grant for them.
	desired := desiredWith("analyst", "alice@example.com", "local-admin")
	current := currentWith(
		model.WarehouseUser{Name: "alice@example.com"},
		model.WarehouseUser{Name: "local-admin", HasPassword: true},
	)
	current.Roles.Add("analyst")
	current.Grantees["analyst"] = setOf("alice@example.com")

	assert.Empty(t, ReconcileGrants(desired, current))
}

func TestReconcileGrantsUnmanagedRolesUntouched(t *testing.T) {
	desired := desiredWith("analyst", "alice@example.com")
	current := currentWith(model.WarehouseUser{Name: "alice@example.com"})
	current.Roles.Append("analyst", "accountadmin")
	current.Grantees["analyst"] = setOf("alice@example.com")
	current.Grantees["accountadmin"] = setOf("alice@example.com")

	actions := ReconcileGrants(desired, current)
	for _, a := range actions {
		assert.NotEqual(t, "accountadmin", a.Role)
	}
	assert.Empty(t, actions)
}

func TestReconcileGrantsEmptyDesiredRoleRevokesAll(t *testing.T) {
	desired := desiredWith("analyst")
	current := currentWith(
		model.WarehouseUser{Name: "alice@example.com"},
		model.WarehouseUser{Name: "bob@example.com"},
	)
	current.Roles.Add("analyst")
	current.Grantees["analyst"] = setOf("alice@example.com", "bob@example.com")

	actions := ReconcileGrants(desired, current)
	assert.Equal(t, []plan.Action{
		{Kind: plan.RevokeRole, Role: "analyst", User: "alice@example.com"},
		{Kind: plan.RevokeRole, Role: "analyst", User: "bob@example.com"},
	}, actions)
}

func TestReconcileGrantsSkipsSentinelLogins(t *testing.T) {
	desired := model.NewDesiredState()
	desired.Members["analyst"] = setOf("alice@example.com", "", "null")
	current := currentWith(model.WarehouseUser{Name: "alice@example.com"})
	current.Roles.Add("analyst")

	actions := ReconcileGrants(desired, current)
	assert.Equal(t, []plan.Action{
		{Kind: plan.GrantRole, Role: "analyst", User: "alice@example.com"},
	}, actions)
}

func TestReconcileGrantsRolesSortedDeterministically(t *testing.T) {
	desired := model.NewDesiredState()
	desired.Members["engineer"] = setOf("alice@example.com")
	desired.Members["analyst"] = setOf("alice@example.com")
	current := currentWith(model.WarehouseUser{Name: "alice@example.com"})

	actions := ReconcileGrants(desired, current)
	assert.Equal(t, []plan.Action{
		{Kind: plan.CreateRole, Role: "analyst"},
		{Kind: plan.GrantRole, Role: "analyst", User: "alice@example.com"},
		{Kind: plan.CreateRole, Role: "engineer"},
		{Kind: plan.GrantRole, Role: "engineer", User: "alice@example.com"},
	}, actions)
}
