//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package common provides shared types and utilities used across the
// snowsync packages.
//
// # Error Handling
//
// The [SyncError] type provides structured error information for failed
// reconciliation runs, including the phase that failed and the set of
// entities that caused the failure. Every fatal error raised by the engine
// is a SyncError, and every SyncError is raised before any mutating
// statement reaches the warehouse.
package common

import (
	"fmt"
	"strings"
)

// Phase identifies which part of a reconciliation run an error belongs to.
type Phase string

// Run phases reported in error messages and exit diagnostics.
const (
	// PhaseConfiguration covers validation performed before any
	// collaborator call, such as the required warehouse credential.
	PhaseConfiguration Phase = "configuration"

	// PhaseCollection covers directory and warehouse reads that feed the
	// state snapshot.
	PhaseCollection Phase = "collection"

	// PhasePolicy covers violations detected while computing the diff,
	// such as missing users when user creation is disallowed.
	PhasePolicy Phase = "policy check"

	// PhaseExecution covers the final application of the change plan.
	PhaseExecution Phase = "execution"
)

// SyncError represents a fatal error encountered during a reconciliation run.
//
// SyncError carries the phase in which the run failed and, where relevant,
// the exact entities (login names, role names) that caused the failure so
// that operators can act without re-running with extra verbosity.
type SyncError struct {
	// Phase is the run phase that failed.
	Phase Phase
	// Reason is a human-readable description of the failure.
	Reason string
	// Entities lists the offending identifiers, if any.
	Entities []string
	// Cause is the underlying error from a collaborator, if any.
	Cause error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Phase, e.Reason)
	if len(e.Entities) > 0 {
		fmt.Fprintf(&b, ": [%s]", strings.Join(e.Entities, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %s", e.Cause)
	}
	return b.String()
}

// Unwrap exposes the underlying collaborator error, if any.
func (e *SyncError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a pre-flight configuration failure, raised
// before any collaborator call is made.
func NewConfigurationError(reason string, entities ...string) *SyncError {
	return &SyncError{Phase: PhaseConfiguration, Reason: reason, Entities: entities}
}

// NewPolicyError creates a policy violation detected during diff
// computation. The entities name the logins or roles that violate policy.
func NewPolicyError(reason string, entities ...string) *SyncError {
	return &SyncError{Phase: PhasePolicy, Reason: reason, Entities: entities}
}

// NewCollectionError wraps a collaborator failure that occurred while
// reading directory or warehouse state.
func NewCollectionError(reason string, cause error) *SyncError {
	return &SyncError{Phase: PhaseCollection, Reason: reason, Cause: cause}
}

// NewExecutionError wraps a collaborator failure that occurred while
// applying the change plan.
func NewExecutionError(reason string, cause error) *SyncError {
	return &SyncError{Phase: PhaseExecution, Reason: reason, Cause: cause}
}
