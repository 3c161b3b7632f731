//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manetu/snowsync/pkg/core/model"
)

func TestBuildDesiredStatePrefixFilter(t *testing.T) {
	groups := []model.DirectoryGroup{
		{DN: "cn=snowflake-role-analyst,ou=sf,dc=example,dc=com", Name: "snowflake-role-analyst", Members: []string{"alice@example.com"}},
		{DN: "cn=unrelated,ou=sf,dc=example,dc=com", Name: "unrelated", Members: []string{"bob@example.com"}},
	}

	desired := BuildDesiredState(groups, "snowflake-role-", false)
	require.Len(t, desired.Members, 1)
	assert.Contains(t, desired.Members, "snowflake-role-analyst")
}

func TestBuildDesiredStateStripPrefix(t *testing.T) {
	groups := []model.DirectoryGroup{
		{DN: "cn=snowflake-role-analyst,ou=sf,dc=example,dc=com", Name: "snowflake-role-analyst", Members: []string{"alice@example.com"}},
	}

	desired := BuildDesiredState(groups, "snowflake-role-", true)
	require.Len(t, desired.Members, 1)
	assert.Contains(t, desired.Members, "analyst")
	assert.True(t, desired.Members["analyst"].Contains("alice@example.com"))
}

func TestBuildDesiredStateStripOnlyLeadingOccurrence(t *testing.T) {
	groups := []model.DirectoryGroup{
		{DN: "cn=pre-pre-admin,ou=sf,dc=example,dc=com", Name: "pre-pre-admin"},
	}

	desired := BuildDesiredState(groups, "pre-", true)
	assert.Contains(t, desired.Members, "pre-admin")
}

func TestBuildDesiredStateEmptyPrefixManagesAll(t *testing.T) {
	groups := []model.DirectoryGroup{
		{DN: "cn=a,dc=example,dc=com", Name: "analyst"},
		{DN: "cn=b,dc=example,dc=com", Name: "engineer"},
	}

	desired := BuildDesiredState(groups, "", false)
	assert.Len(t, desired.Members, 2)
}

func TestBuildDesiredStateDeduplicatesMembers(t *testing.T) {
	groups := []model.DirectoryGroup{
		{DN: "cn=a,dc=example,dc=com", Name: "analyst",
			Members: []string{"alice@example.com", "alice@example.com", "", "bob@example.com"}},
	}

	desired := BuildDesiredState(groups, "", false)
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"},
		desired.Members["analyst"].ToSlice())
}

func TestBuildDesiredStateCollisionLastWins(t *testing.T) {
	// Same group name under two OUs collapses to one role; the later
	// group's membership replaces the earlier one's entirely.
	groups := []model.DirectoryGroup{
		{DN: "cn=pre-analyst,ou=teams,dc=example,dc=com", Name: "pre-analyst",
			Members: []string{"alice@example.com"}},
		{DN: "cn=pre-analyst,ou=legacy,dc=example,dc=com", Name: "pre-analyst",
			Members: []string{"bob@example.com"}},
	}

	desired := BuildDesiredState(groups, "pre-", true)
	require.Len(t, desired.Members, 1)
	assert.ElementsMatch(t, []string{"bob@example.com"}, desired.Members["analyst"].ToSlice())

	// Without stripping the names still collide; replacement, not union.
	desired = BuildDesiredState(groups, "pre-", false)
	require.Len(t, desired.Members, 1)
	assert.ElementsMatch(t, []string{"bob@example.com"}, desired.Members["pre-analyst"].ToSlice())
}

func TestBuildDesiredStateLogins(t *testing.T) {
	groups := []model.DirectoryGroup{
		{DN: "cn=a,dc=example,dc=com", Name: "analyst", Members: []string{"alice@example.com", "bob@example.com"}},
		{DN: "cn=b,dc=example,dc=com", Name: "engineer", Members: []string{"bob@example.com", "carol@example.com"}},
	}

	desired := BuildDesiredState(groups, "", false)
	assert.ElementsMatch(t,
		[]string{"alice@example.com", "bob@example.com", "carol@example.com"},
		desired.Logins().ToSlice())
}

func TestBuildCurrentStatePartition(t *testing.T) {
	users := []model.WarehouseUser{
		{Name: "local-admin", HasPassword: true},
		{Name: "alice@example.com"},
		{Name: "bob@example.com", Disabled: true},
		{Name: "legacy", HasPassword: true, Disabled: true},
	}

	current := BuildCurrentState(users, nil, nil)
	assert.ElementsMatch(t, []string{"local-admin", "legacy"}, current.NonFederated.ToSlice())
	assert.ElementsMatch(t, []string{"alice@example.com"}, current.FederatedEnabled.ToSlice())
	assert.ElementsMatch(t, []string{"bob@example.com"}, current.FederatedDisabled.ToSlice())
}

func TestBuildCurrentStateGrantFiltering(t *testing.T) {
	users := []model.WarehouseUser{
		{Name: "alice@example.com"},
		{Name: "bob@example.com", Disabled: true},
		{Name: "local-admin", HasPassword: true},
	}
	grants := []model.RoleGrant{
		{Role: "analyst", Grantee: "alice@example.com", Kind: model.GranteeUser},
		{Role: "analyst", Grantee: "bob@example.com", Kind: model.GranteeUser},
		{Role: "analyst", Grantee: "local-admin", Kind: model.GranteeUser},
		{Role: "analyst", Grantee: "sysadmin", Kind: model.GranteeRole},
		{Role: "analyst", Grantee: "ghost@example.com", Kind: model.GranteeUser},
	}

	current := BuildCurrentState(users, []string{"analyst"}, grants)
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"},
		current.GranteesOf("analyst").ToSlice())
}

func TestGranteesOfUnknownRole(t *testing.T) {
	current := BuildCurrentState(nil, nil, nil)
	assert.Equal(t, mapset.NewSet[string](), current.GranteesOf("missing"))
}
