//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package mock provides a fixture-backed warehouse client for testing and
// for runs with mock.enabled set.
package mock

import (
	"context"

	"github.com/mohae/deepcopy"

	"github.com/manetu/snowsync/pkg/core/model"
)

// Client serves warehouse data from in-memory fixtures and records every
// executed statement block. Query results are deep copies, so callers can
// never alias fixture state.
type Client struct {
	Users  []model.WarehouseUser
	Roles  []string
	Grants []model.RoleGrant

	// Executed collects the statement blocks passed to Execute.
	Executed []string

	// Errors, when set, are returned by the corresponding method.
	ListUsersErr  error
	ListRolesErr  error
	ListGrantsErr error
	ExecuteErr    error
}

// New returns an empty fixture client.
func New() *Client {
	return &Client{}
}

// ListUsers returns the fixture users.
func (c *Client) ListUsers(ctx context.Context) ([]model.WarehouseUser, error) {
	if c.ListUsersErr != nil {
		return nil, c.ListUsersErr
	}
	if c.Users == nil {
		return nil, nil
	}
	return deepcopy.Copy(c.Users).([]model.WarehouseUser), nil
}

// ListRoles returns the fixture role names.
func (c *Client) ListRoles(ctx context.Context) ([]string, error) {
	if c.ListRolesErr != nil {
		return nil, c.ListRolesErr
	}
	if c.Roles == nil {
		return nil, nil
	}
	return deepcopy.Copy(c.Roles).([]string), nil
}

// ListGrantsOfRoles returns the fixture grants restricted to the named roles.
func (c *Client) ListGrantsOfRoles(ctx context.Context, roles []string) ([]model.RoleGrant, error) {
	if c.ListGrantsErr != nil {
		return nil, c.ListGrantsErr
	}

	wanted := make(map[string]bool, len(roles))
	for _, r := range roles {
		wanted[r] = true
	}

	var out []model.RoleGrant
	for _, g := range c.Grants {
		if wanted[g.Role] {
			out = append(out, g)
		}
	}
	return out, nil
}

// Execute records the statement block.
func (c *Client) Execute(ctx context.Context, block string) error {
	if c.ExecuteErr != nil {
		return c.ExecuteErr
	}
	c.Executed = append(c.Executed, block)
	return nil
}

// Close implements warehouse.Client.
func (c *Client) Close() error {
	return nil
}
