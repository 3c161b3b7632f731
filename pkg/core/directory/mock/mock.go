//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package mock provides a fixture-backed directory source for testing and
// for runs with mock.enabled set.
package mock

import (
	"context"

	"github.com/mohae/deepcopy"

	"github.com/manetu/snowsync/pkg/core/model"
)

// Source serves directory data from in-memory fixtures. Results are deep
// copies, so callers can never alias fixture state.
type Source struct {
	// GroupsByOU maps an OU identity to its security groups, members
	// included.
	GroupsByOU map[string][]model.DirectoryGroup

	// Err, when set, is returned by every query.
	Err error
}

// New returns an empty fixture source.
func New() *Source {
	return &Source{GroupsByOU: make(map[string][]model.DirectoryGroup)}
}

// ListSecurityGroups returns the fixture groups for the OU, without members.
func (s *Source) ListSecurityGroups(ctx context.Context, ou string) ([]model.DirectoryGroup, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	var out []model.DirectoryGroup
	for _, g := range s.GroupsByOU[ou] {
		out = append(out, model.DirectoryGroup{DN: g.DN, Name: g.Name})
	}
	return out, nil
}

// ResolveMembers returns the fixture members for the group.
func (s *Source) ResolveMembers(ctx context.Context, group model.DirectoryGroup, loginAttribute string) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	for _, groups := range s.GroupsByOU {
		for _, g := range groups {
			if g.DN == group.DN {
				if g.Members == nil {
					return nil, nil
				}
				return deepcopy.Copy(g.Members).([]string), nil
			}
		}
	}
	return nil, nil
}

// Close implements directory.Source.
func (s *Source) Close() error {
	return nil
}
