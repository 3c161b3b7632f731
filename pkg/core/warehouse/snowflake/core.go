//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package snowflake implements the warehouse client against Snowflake.
//
// Snowflake metadata comes from SHOW commands, whose result shapes are not
// part of the stable SQL surface; rows are located by column name and
// anything malformed is skipped. None of that leaks past this package.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/manetu/snowsync/internal/logging"
	"github.com/manetu/snowsync/pkg/core/model"
)

var logger = logging.GetLogger("snowsync.warehouse")

const agent = "snowflake"

// Config holds the connection settings for a Snowflake client.
type Config struct {
	Account  string
	User     string
	Password string
	Role     string
	Region   string
}

// Client is a warehouse.Client backed by a database/sql connection pool.
type Client struct {
	db *sql.DB
}

// Open builds a DSN from the config and opens the connection pool. The
// pool is lazy; the first query performs the actual login.
func Open(cfg Config) (*Client, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:  cfg.Account,
		User:     cfg.User,
		Password: cfg.Password,
		Role:     cfg.Role,
		Region:   cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building warehouse DSN")
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening warehouse connection")
	}

	return &Client{db: db}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// ListUsers returns every warehouse user.
func (c *Client) ListUsers(ctx context.Context) ([]model.WarehouseUser, error) {
	rows, cols, err := c.query(ctx, "SHOW USERS")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nameIdx := columnIndex(cols, "name")
	passwordIdx := columnIndex(cols, "has_password")
	disabledIdx := columnIndex(cols, "disabled")
	if nameIdx < 0 || passwordIdx < 0 || disabledIdx < 0 {
		return nil, errors.New("SHOW USERS result is missing expected columns")
	}

	var users []model.WarehouseUser
	err = scan(rows, len(cols), func(vals []sql.NullString) {
		if !vals[nameIdx].Valid {
			return
		}
		users = append(users, model.WarehouseUser{
			Name:        vals[nameIdx].String,
			HasPassword: parseBool(vals[passwordIdx]),
			Disabled:    parseBool(vals[disabledIdx]),
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "scanning SHOW USERS")
	}

	logger.Debugf(agent, "listUsers", "warehouse reports %d users", len(users))
	return users, nil
}

// ListRoles returns every warehouse role name.
func (c *Client) ListRoles(ctx context.Context) ([]string, error) {
	rows, cols, err := c.query(ctx, "SHOW ROLES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nameIdx := columnIndex(cols, "name")
	if nameIdx < 0 {
		return nil, errors.New("SHOW ROLES result is missing the name column")
	}

	var roles []string
	err = scan(rows, len(cols), func(vals []sql.NullString) {
		if vals[nameIdx].Valid {
			roles = append(roles, vals[nameIdx].String)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "scanning SHOW ROLES")
	}

	logger.Debugf(agent, "listRoles", "warehouse reports %d roles", len(roles))
	return roles, nil
}

// ListGrantsOfRoles returns all grants of the named roles.
func (c *Client) ListGrantsOfRoles(ctx context.Context, roles []string) ([]model.RoleGrant, error) {
	var grants []model.RoleGrant
	for _, role := range roles {
		rg, err := c.grantsOf(ctx, role)
		if err != nil {
			return nil, err
		}
		grants = append(grants, rg...)
	}
	return grants, nil
}

func (c *Client) grantsOf(ctx context.Context, role string) ([]model.RoleGrant, error) {
	rows, cols, err := c.query(ctx, fmt.Sprintf("SHOW GRANTS OF ROLE %s", quoteIdentifier(role)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kindIdx := columnIndex(cols, "granted_to")
	granteeIdx := columnIndex(cols, "grantee_name")
	if kindIdx < 0 || granteeIdx < 0 {
		return nil, errors.Errorf("SHOW GRANTS OF ROLE %s result is missing expected columns", role)
	}

	var grants []model.RoleGrant
	err = scan(rows, len(cols), func(vals []sql.NullString) {
		if g, ok := grantFromRow(role, vals[kindIdx], vals[granteeIdx]); ok {
			grants = append(grants, g)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning grants of role %s", role)
	}
	return grants, nil
}

// Execute runs the statement block in a single multi-statement request.
func (c *Client) Execute(ctx context.Context, block string) error {
	// 0 permits any number of statements in the block
	mctx, err := sf.WithMultiStatement(ctx, 0)
	if err != nil {
		return errors.Wrap(err, "enabling multi-statement execution")
	}

	if _, err := c.db.ExecContext(mctx, block); err != nil {
		return errors.Wrap(err, "executing statement block")
	}
	return nil
}

func (c *Client) query(ctx context.Context, q string) (*sql.Rows, []string, error) {
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "querying %q", q)
	}

	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, nil, errors.Wrapf(err, "reading columns of %q", q)
	}
	return rows, cols, nil
}

// scan walks the result set, presenting each row as nullable strings.
func scan(rows *sql.Rows, width int, visit func([]sql.NullString)) error {
	raw := make([]sql.NullString, width)
	vals := make([]interface{}, width)
	for i := range raw {
		vals[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(vals...); err != nil {
			return err
		}
		visit(raw)
	}
	return rows.Err()
}

// columnIndex locates a column by case-insensitive name, -1 if absent.
func columnIndex(cols []string, name string) int {
	for i, col := range cols {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// parseBool decodes the textual booleans SHOW commands emit.
func parseBool(v sql.NullString) bool {
	return v.Valid && strings.EqualFold(v.String, "true")
}

// grantFromRow converts one SHOW GRANTS row, rejecting rows whose grantee
// kind is neither USER nor ROLE (privilege rows and header repeats).
func grantFromRow(role string, kind, grantee sql.NullString) (model.RoleGrant, bool) {
	if !kind.Valid || !grantee.Valid {
		return model.RoleGrant{}, false
	}

	switch strings.ToUpper(kind.String) {
	case string(model.GranteeUser):
		return model.RoleGrant{Role: role, Grantee: grantee.String, Kind: model.GranteeUser}, true
	case string(model.GranteeRole):
		return model.RoleGrant{Role: role, Grantee: grantee.String, Kind: model.GranteeRole}, true
	default:
		return model.RoleGrant{}, false
	}
}

// quoteIdentifier escapes and quotes a Snowflake identifier.
func quoteIdentifier(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
