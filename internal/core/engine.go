//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/manetu/snowsync/internal/logging"
	"github.com/manetu/snowsync/pkg/common"
	"github.com/manetu/snowsync/pkg/core/directory"
	"github.com/manetu/snowsync/pkg/core/plan"
	"github.com/manetu/snowsync/pkg/core/warehouse"
)

var logger = logging.GetLogger("snowsync.engine")

const agent = "engine"

// Settings holds the per-run behavior switches of the engine.
type Settings struct {
	// OU is the organizational unit scanned for security groups.
	OU string
	// LoginAttribute is the directory attribute holding warehouse logins.
	LoginAttribute string
	// RolePrefix restricts managed groups; empty manages all groups
	// under the OU.
	RolePrefix string
	// StripPrefix removes RolePrefix from derived role names.
	StripPrefix bool
	// CreateMissingUsers permits creating users the directory expects
	// but the warehouse lacks. When false such users abort the run.
	CreateMissingUsers bool
	// DisableRemovedUsers permits disabling enabled federated users no
	// longer present in any managed group.
	DisableRemovedUsers bool
	// DryRun renders the plan instead of applying it.
	DryRun bool
	// Output selects the dry-run rendering: "sql" or "yaml".
	Output string
}

// Engine computes and applies the minimal change plan that converges
// warehouse identity state onto directory group membership.
//
// The engine holds no mutable state between runs; the directory and the
// warehouse are each other's durable state, and each run reconciles a
// fresh snapshot of both.
type Engine struct {
	directory directory.Source
	warehouse warehouse.Client
	settings  Settings
}

// New returns an engine over the given collaborators.
func New(d directory.Source, w warehouse.Client, s Settings) *Engine {
	return &Engine{directory: d, warehouse: w, settings: s}
}

// Run executes one reconciliation pass: collect both snapshots, normalize,
// diff users and role grants, and apply or render the resulting plan.
//
// Any error return happens strictly before a mutating statement reaches
// the warehouse; there is no partial-apply path.
func (e *Engine) Run(ctx context.Context) (*plan.Outcome, error) {
	runID := uuid.New().String()
	logger.Infof(agent, "run", "reconciliation run %s starting (ou=%q prefix=%q dry-run=%v)",
		runID, e.settings.OU, e.settings.RolePrefix, e.settings.DryRun)

	snap, err := e.collect(ctx)
	if err != nil {
		return nil, err
	}

	desired := BuildDesiredState(snap.Groups, e.settings.RolePrefix, e.settings.StripPrefix)

	roles, grants, err := e.collectGrants(ctx, desired.RoleNames())
	if err != nil {
		return nil, err
	}
	current := BuildCurrentState(snap.Users, roles, grants)

	userActions, err := ReconcileUsers(desired, current, e.settings)
	if err != nil {
		return nil, err
	}
	grantActions := ReconcileGrants(desired, current)

	p := plan.New(runID, userActions, grantActions)

	if p.Empty() {
		logger.Infof(agent, "run", "run %s: warehouse already converged, nothing to do", runID)
		return &plan.Outcome{State: plan.StateNoop, Plan: p}, nil
	}

	if logger.IsDebugEnabled() {
		logger.Debugf(agent, "run", "run %s computed plan:", runID)
		common.PrettyPrint(p)
	}

	if e.settings.DryRun {
		rendered := p.SQL()
		if e.settings.Output == "yaml" {
			if rendered, err = p.YAML(); err != nil {
				// A render failure is local; nothing reached the warehouse.
				return nil, errors.Wrap(err, "rendering plan as yaml")
			}
		}
		logger.Infof(agent, "run", "run %s: dry-run, plan rendered and discarded", runID)
		return &plan.Outcome{State: plan.StateRendered, Plan: p, Rendered: rendered}, nil
	}

	if err := e.warehouse.Execute(ctx, p.SQL()); err != nil {
		return nil, common.NewExecutionError("applying reconciliation plan", err)
	}

	s := p.Summary()
	logger.Infof(agent, "run",
		"run %s applied: %d create-user, %d enable-user, %d disable-user, %d create-role, %d grant-role, %d revoke-role",
		runID, s[plan.CreateUser], s[plan.EnableUser], s[plan.DisableUser],
		s[plan.CreateRole], s[plan.GrantRole], s[plan.RevokeRole])

	return &plan.Outcome{State: plan.StateApplied, Plan: p}, nil
}
