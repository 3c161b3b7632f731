//
//  Copyright © Manetu Inc. All rights reserved.
//

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/manetu/snowsync/cmd/snowsync/subcommands/sync"
	"github.com/manetu/snowsync/cmd/snowsync/version"
)

// syncFlags builds the shared flag set for the sync and plan commands.
// Each command gets its own instances; v3 flags carry parsed state.
func syncFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "account",
			Aliases: []string{"a"},
			Usage:   "Snowflake account identifier",
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "Snowflake user to connect as. The credential must be supplied via SNOWSYNC_SNOWFLAKE_PASSWORD.",
		},
		&cli.StringFlag{
			Name:  "role",
			Usage: "Snowflake role assumed for the session, e.g. SECURITYADMIN",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "Snowflake deployment region",
		},
		&cli.StringFlag{
			Name:  "ldap-url",
			Usage: "Directory endpoint, e.g. ldaps://dc01.example.com",
		},
		&cli.StringFlag{
			Name:  "bind-dn",
			Usage: "DN to bind to the directory as. The credential must be supplied via SNOWSYNC_LDAP_PASSWORD.",
		},
		&cli.StringFlag{
			Name:  "ou",
			Usage: "Organizational unit scanned for security groups",
		},
		&cli.StringFlag{
			Name:  "login-attribute",
			Usage: "Directory attribute holding the warehouse login name",
		},
		&cli.StringFlag{
			Name:    "role-prefix",
			Aliases: []string{"p"},
			Usage:   "Manage only groups whose name starts with `PREFIX`. Empty manages all groups under the OU.",
		},
		&cli.BoolFlag{
			Name:  "strip-prefix",
			Usage: "Remove the role prefix from derived role names",
		},
		&cli.BoolFlag{
			Name:  "create-missing-users",
			Usage: "Create users present in the directory but absent from the warehouse. When disabled, such users abort the run.",
		},
		&cli.BoolFlag{
			Name:  "disable-removed-users",
			Usage: "Disable federated users no longer present in any managed group",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "Render the change plan without applying it",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Dry-run rendering format.  Must be one of 'sql' or 'yaml'",
			Action: func(ctx context.Context, command *cli.Command, s string) error {
				if s != "sql" && s != "yaml" {
					return cli.Exit("unsupported output format: "+s, 1)
				}
				return nil
			},
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "snowsync",
		Usage:   "One-way reconciliation of Snowflake users, roles, and grants from Active Directory group membership",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Run a single reconciliation pass from the directory to the warehouse",
				Flags:  syncFlags(),
				Action: sync.Execute,
			},
			{
				Name:   "plan",
				Usage:  "Compute and render the change plan without applying it (sync with dry-run forced)",
				Flags:  syncFlags(),
				Action: sync.ExecutePlan,
			},
			{
				Name:  "version",
				Usage: "Print the snowsync version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Println(version.GetVersion())
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
