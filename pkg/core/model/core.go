//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package model defines the canonical data model shared by the snowsync
// engine and its collaborators.
//
// All values are read-only snapshots for the duration of a single
// reconciliation run. The directory and the warehouse are each other's
// durable state; nothing here is persisted between runs.
package model

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// GranteeKind discriminates the two grantee flavors a role grant can carry.
type GranteeKind string

// Grantee kinds as reported by the warehouse.
const (
	GranteeUser GranteeKind = "USER"
	GranteeRole GranteeKind = "ROLE"
)

// DirectoryGroup is a security group discovered under the target OU.
// Members holds effective member login names: recursively flattened,
// restricted to enabled accounts with a non-empty login attribute.
type DirectoryGroup struct {
	DN      string
	Name    string
	Members []string
}

// UserClass is the strict partition of warehouse users at snapshot time,
// derived solely from the password and disabled flags.
type UserClass int

// The three user classes. Exactly one holds for every warehouse user.
const (
	// NonFederated users carry a locally-set password and are never
	// created, disabled, or considered in grant comparisons.
	NonFederated UserClass = iota
	// FederatedEnabled users are SSO-managed and active.
	FederatedEnabled
	// FederatedDisabled users are SSO-managed and disabled.
	FederatedDisabled
)

// String implements fmt.Stringer.
func (c UserClass) String() string {
	switch c {
	case NonFederated:
		return "non-federated"
	case FederatedEnabled:
		return "federated-enabled"
	case FederatedDisabled:
		return "federated-disabled"
	default:
		return "unknown"
	}
}

// WarehouseUser is one row of the warehouse user listing.
type WarehouseUser struct {
	Name        string
	HasPassword bool
	Disabled    bool
}

// Class returns the partition class of the user.
func (u WarehouseUser) Class() UserClass {
	switch {
	case u.HasPassword:
		return NonFederated
	case u.Disabled:
		return FederatedDisabled
	default:
		return FederatedEnabled
	}
}

// RoleGrant is one role-to-grantee association held by the warehouse.
type RoleGrant struct {
	Role    string
	Grantee string
	Kind    GranteeKind
}

// DesiredState maps role names derived from directory groups to the set of
// login names that should hold each role.
type DesiredState struct {
	Members map[string]mapset.Set[string]
}

// NewDesiredState returns an empty desired state.
func NewDesiredState() *DesiredState {
	return &DesiredState{Members: make(map[string]mapset.Set[string])}
}

// RoleNames returns the managed role names in sorted order.
func (d *DesiredState) RoleNames() []string {
	names := make([]string, 0, len(d.Members))
	for name := range d.Members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Logins returns the union of all login names appearing anywhere in the
// mapping: the desired federated user set.
func (d *DesiredState) Logins() mapset.Set[string] {
	logins := mapset.NewSet[string]()
	for _, members := range d.Members {
		logins = logins.Union(members)
	}
	return logins
}

// CurrentState is the normalized warehouse snapshot: the partitioned user
// sets plus role existence and the per-role federated USER grantees.
type CurrentState struct {
	NonFederated      mapset.Set[string]
	FederatedEnabled  mapset.Set[string]
	FederatedDisabled mapset.Set[string]
	Roles             mapset.Set[string]
	// Grantees maps role name to its current federated USER-kind
	// grantees. ROLE-kind grants and grants to non-federated users are
	// excluded here and never touched by the engine.
	Grantees map[string]mapset.Set[string]
}

// NewCurrentState returns an empty current state.
func NewCurrentState() *CurrentState {
	return &CurrentState{
		NonFederated:      mapset.NewSet[string](),
		FederatedEnabled:  mapset.NewSet[string](),
		FederatedDisabled: mapset.NewSet[string](),
		Roles:             mapset.NewSet[string](),
		Grantees:          make(map[string]mapset.Set[string]),
	}
}

// GranteesOf returns the federated grantee set for a role, empty if the
// role has none recorded.
func (c *CurrentState) GranteesOf(role string) mapset.Set[string] {
	if g, ok := c.Grantees[role]; ok {
		return g
	}
	return mapset.NewSet[string]()
}

// Sorted returns the set contents as a sorted slice. Set iteration order is
// randomized, so every consumer that emits actions or logs goes through
// this to keep runs deterministic.
func Sorted(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
