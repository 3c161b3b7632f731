//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manetu/snowsync/pkg/core/config"
	dirmock "github.com/manetu/snowsync/pkg/core/directory/mock"
	"github.com/manetu/snowsync/pkg/core/model"
	"github.com/manetu/snowsync/pkg/core/options"
	"github.com/manetu/snowsync/pkg/core/plan"
	whmock "github.com/manetu/snowsync/pkg/core/warehouse/mock"
)

func TestNewSyncEngineDefaultsToMocks(t *testing.T) {
	config.ResetConfig()

	engine, err := NewSyncEngine()
	require.NoError(t, err)
	defer func() { _ = engine.Close() }()

	// Empty fixtures on both sides converge trivially.
	outcome, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, plan.StateNoop, outcome.State)
}

func TestNewSyncEngineWithCollaborators(t *testing.T) {
	t.Setenv("SNOWSYNC_LDAP_OU", "ou=snowflake,dc=example,dc=com")
	t.Setenv("SNOWSYNC_SYNC_DRYRUN", "true")
	config.ResetConfig()
	defer config.ResetConfig()

	dir := dirmock.New()
	dir.GroupsByOU["ou=snowflake,dc=example,dc=com"] = []model.DirectoryGroup{
		{DN: "cn=analyst,ou=snowflake,dc=example,dc=com", Name: "analyst",
			Members: []string{"alice@example.com"}},
	}
	wh := whmock.New()

	engine, err := NewSyncEngine(
		options.WithDirectory(dir),
		options.WithWarehouse(wh),
	)
	require.NoError(t, err)
	defer func() { _ = engine.Close() }()

	outcome, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, plan.StateRendered, outcome.State)
	assert.Contains(t, outcome.Rendered, `CREATE USER "alice@example.com"`)
	assert.Empty(t, wh.Executed)
}

func TestWithCollaboratorsIgnoredInMockMode(t *testing.T) {
	t.Setenv("SNOWSYNC_MOCK_ENABLED", "true")
	config.ResetConfig()
	defer config.ResetConfig()

	dir := dirmock.New()
	dir.Err = assert.AnError
	wh := whmock.New()
	wh.ListUsersErr = assert.AnError

	// Mock mode discards the broken collaborators, so the run succeeds
	// against the built-in fixtures.
	engine, err := NewSyncEngine(
		options.WithDirectory(dir),
		options.WithWarehouse(wh),
	)
	require.NoError(t, err)
	defer func() { _ = engine.Close() }()

	outcome, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, plan.StateNoop, outcome.State)
}
