//
//  Copyright © Manetu Inc. All rights reserved.
//

package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationErrorFormat(t *testing.T) {
	err := NewConfigurationError("required secret SNOWSYNC_SNOWFLAKE_PASSWORD is not set")
	assert.Equal(t, "configuration: required secret SNOWSYNC_SNOWFLAKE_PASSWORD is not set", err.Error())
}

func TestPolicyErrorNamesEntities(t *testing.T) {
	err := NewPolicyError("users missing from warehouse and user creation is disabled",
		"alice@example.com", "bob@example.com")

	assert.Equal(t, PhasePolicy, err.Phase)
	assert.Contains(t, err.Error(), "policy check:")
	assert.Contains(t, err.Error(), "[alice@example.com, bob@example.com]")
}

func TestCollectionErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewCollectionError("listing warehouse users", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "collection: listing warehouse users: connection reset", err.Error())
}

func TestExecutionErrorPhase(t *testing.T) {
	err := NewExecutionError("applying plan", errors.New("boom"))
	assert.Equal(t, PhaseExecution, err.Phase)

	var serr *SyncError
	require.ErrorAs(t, error(err), &serr)
}
