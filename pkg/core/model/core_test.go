//
//  Copyright © Manetu Inc. All rights reserved.
//

package model

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestUserClassPartition(t *testing.T) {
	users := []WarehouseUser{
		{Name: "LOCAL_ADMIN", HasPassword: true, Disabled: false},
		{Name: "LOCAL_STALE", HasPassword: true, Disabled: true},
		{Name: "ALICE", HasPassword: false, Disabled: false},
		{Name: "BOB", HasPassword: false, Disabled: true},
	}

	// Exactly one class holds for every user
	for _, u := range users {
		matches := 0
		for _, c := range []UserClass{NonFederated, FederatedEnabled, FederatedDisabled} {
			if u.Class() == c {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "user %s", u.Name)
	}

	// hasPassword wins over disabled
	assert.Equal(t, NonFederated, users[1].Class())
	assert.Equal(t, FederatedEnabled, users[2].Class())
	assert.Equal(t, FederatedDisabled, users[3].Class())
}

func TestDesiredStateLogins(t *testing.T) {
	d := NewDesiredState()
	d.Members["analyst"] = mapset.NewSet("alice@example.com", "bob@example.com")
	d.Members["engineer"] = mapset.NewSet("bob@example.com", "carol@example.com")

	assert.Equal(t,
		[]string{"alice@example.com", "bob@example.com", "carol@example.com"},
		Sorted(d.Logins()))
	assert.Equal(t, []string{"analyst", "engineer"}, d.RoleNames())
}

func TestGranteesOfUnknownRole(t *testing.T) {
	c := NewCurrentState()
	assert.Equal(t, 0, c.GranteesOf("missing").Cardinality())

	c.Grantees["analyst"] = mapset.NewSet("ALICE")
	assert.Equal(t, []string{"ALICE"}, Sorted(c.GranteesOf("analyst")))
}
