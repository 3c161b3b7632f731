//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package sync implements the sync subcommand: one reconciliation pass
// from the directory to the warehouse.
package sync

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/manetu/snowsync/internal/logging"
	"github.com/manetu/snowsync/pkg/common"
	"github.com/manetu/snowsync/pkg/core"
	"github.com/manetu/snowsync/pkg/core/config"
	"github.com/manetu/snowsync/pkg/core/directory/ldap"
	"github.com/manetu/snowsync/pkg/core/options"
	"github.com/manetu/snowsync/pkg/core/plan"
	"github.com/manetu/snowsync/pkg/core/warehouse/snowflake"
)

var logger = logging.GetLogger("snowsync")

const agent string = "sync"

// flagKeys maps each CLI flag to its configuration key. Flags the user set
// explicitly override file and environment values.
var flagKeys = map[string]string{
	"account":               config.SnowflakeAccount,
	"user":                  config.SnowflakeUser,
	"role":                  config.SnowflakeRole,
	"region":                config.SnowflakeRegion,
	"ldap-url":              config.LdapURL,
	"bind-dn":               config.LdapBindDN,
	"ou":                    config.LdapOU,
	"login-attribute":       config.LoginAttribute,
	"role-prefix":           config.RolePrefix,
	"strip-prefix":          config.StripPrefix,
	"create-missing-users":  config.CreateMissingUsers,
	"disable-removed-users": config.DisableRemovedUsers,
	"dry-run":               config.DryRun,
	"output":                config.Output,
}

func pushFlags(cmd *cli.Command) {
	config.Init()
	for flag, key := range flagKeys {
		if cmd.IsSet(flag) {
			config.VConfig.Set(key, cmd.Value(flag))
		}
	}
}

// requiredSettings are checked before any collaborator is dialed, in the
// order they are reported. Credentials are environment-only, so a missing
// one is reported by its variable name rather than a flag.
var requiredSettings = []struct {
	key  string
	hint string
}{
	{config.SnowflakeAccount, "--account"},
	{config.SnowflakeUser, "--user"},
	{config.SnowflakePassword, "SNOWSYNC_SNOWFLAKE_PASSWORD"},
	{config.LdapURL, "--ldap-url"},
	{config.LdapOU, "--ou"},
}

func validate() error {
	var missing []string
	for _, s := range requiredSettings {
		if config.VConfig.GetString(s.key) == "" {
			missing = append(missing, s.hint)
		}
	}
	if len(missing) > 0 {
		return common.NewConfigurationError("missing required settings", missing...)
	}
	return nil
}

func buildCollaborators() ([]options.EngineOptionsFunc, func(), error) {
	if err := validate(); err != nil {
		return nil, nil, err
	}

	warehouse, err := snowflake.Open(snowflake.Config{
		Account:  config.VConfig.GetString(config.SnowflakeAccount),
		User:     config.VConfig.GetString(config.SnowflakeUser),
		Password: config.VConfig.GetString(config.SnowflakePassword),
		Role:     config.VConfig.GetString(config.SnowflakeRole),
		Region:   config.VConfig.GetString(config.SnowflakeRegion),
	})
	if err != nil {
		return nil, nil, err
	}

	directory, err := ldap.Dial(ldap.Config{
		URL:      config.VConfig.GetString(config.LdapURL),
		BindDN:   config.VConfig.GetString(config.LdapBindDN),
		Password: config.VConfig.GetString(config.LdapPassword),
	})
	if err != nil {
		_ = warehouse.Close()
		return nil, nil, err
	}

	// The engine takes ownership of both connections; this cleanup only
	// fires when engine construction itself fails.
	cleanup := func() {
		_ = directory.Close()
		_ = warehouse.Close()
	}
	return []options.EngineOptionsFunc{
		options.WithDirectory(directory),
		options.WithWarehouse(warehouse),
	}, cleanup, nil
}

// Execute runs the sync command: construct the collaborators, run one
// reconciliation pass, and report the outcome. A non-nil error return
// means the run aborted with the warehouse untouched.
func Execute(ctx context.Context, cmd *cli.Command) error {
	return execute(ctx, cmd, os.Stdout, false)
}

// ExecutePlan runs the plan command: identical to sync except dry-run is
// forced on, so the computed plan is rendered and discarded.
func ExecutePlan(ctx context.Context, cmd *cli.Command) error {
	return execute(ctx, cmd, os.Stdout, true)
}

func execute(ctx context.Context, cmd *cli.Command, out io.Writer, forceDryRun bool) error {
	pushFlags(cmd)
	if forceDryRun {
		config.VConfig.Set(config.DryRun, true)
	}

	var engineOptions []options.EngineOptionsFunc
	var cleanup func()
	if config.VConfig.GetBool(config.MockEnabled) {
		logger.Warn(agent, "Execute", "Mock mode enabled; running against fixture collaborators")
	} else {
		opts, c, err := buildCollaborators()
		if err != nil {
			return err
		}
		engineOptions, cleanup = opts, c
	}

	engine, err := core.NewSyncEngine(engineOptions...)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return err
	}
	defer func() { _ = engine.Close() }()

	outcome, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	switch outcome.State {
	case plan.StateNoop:
		fmt.Fprintln(out, "already converged; no changes required")
	case plan.StateRendered:
		fmt.Fprint(out, outcome.Rendered)
	case plan.StateApplied:
		s := outcome.Plan.Summary()
		fmt.Fprintf(out, "applied plan %s: %d user(s) created, %d enabled, %d disabled, %d role(s) created, %d grant(s), %d revoke(s)\n",
			outcome.Plan.ID,
			s[plan.CreateUser], s[plan.EnableUser], s[plan.DisableUser],
			s[plan.CreateRole], s[plan.GrantRole], s[plan.RevokeRole])
	}
	return nil
}
