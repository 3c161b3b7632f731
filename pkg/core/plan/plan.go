//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package plan defines the reconciliation plan: the ordered, atomic set of
// mutating actions computed to converge warehouse state onto the
// directory-derived desired state.
//
// A plan is built fresh each run, never persisted, and consumed exactly
// once: rendered for inspection in dry-run mode, or applied by the
// warehouse collaborator inside a single begin/commit-framed statement
// block.
package plan

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tags the variant of a reconciliation action.
type Kind string

// Action kinds, in the order they may legally appear within a plan: user
// lifecycle actions precede any grant referencing the user, and a role
// creation precedes that role's grants.
const (
	CreateUser  Kind = "create-user"
	EnableUser  Kind = "enable-user"
	DisableUser Kind = "disable-user"
	CreateRole  Kind = "create-role"
	GrantRole   Kind = "grant-role"
	RevokeRole  Kind = "revoke-role"
)

// Action is one mutating step of a reconciliation plan.
type Action struct {
	Kind Kind   `yaml:"kind"`
	Role string `yaml:"role,omitempty"`
	User string `yaml:"user,omitempty"`
}

// quoteIdentifier escapes and quotes a warehouse identifier.
func quoteIdentifier(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteString escapes and quotes a string literal.
func quoteString(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

// SQL renders the action as a single warehouse statement. Created users are
// federated: no password is set, so the directory remains their only
// credential path.
func (a Action) SQL() string {
	switch a.Kind {
	case CreateUser:
		return fmt.Sprintf("CREATE USER %s LOGIN_NAME = %s DISPLAY_NAME = %s DISABLED = FALSE;",
			quoteIdentifier(a.User), quoteString(a.User), quoteString(a.User))
	case EnableUser:
		return fmt.Sprintf("ALTER USER %s SET DISABLED = FALSE;", quoteIdentifier(a.User))
	case DisableUser:
		return fmt.Sprintf("ALTER USER %s SET DISABLED = TRUE;", quoteIdentifier(a.User))
	case CreateRole:
		return fmt.Sprintf("CREATE ROLE %s;", quoteIdentifier(a.Role))
	case GrantRole:
		return fmt.Sprintf("GRANT ROLE %s TO USER %s;", quoteIdentifier(a.Role), quoteIdentifier(a.User))
	case RevokeRole:
		return fmt.Sprintf("REVOKE ROLE %s FROM USER %s;", quoteIdentifier(a.Role), quoteIdentifier(a.User))
	default:
		return ""
	}
}

// Plan is the ordered action sequence for one reconciliation run.
type Plan struct {
	ID      string   `yaml:"id"`
	Actions []Action `yaml:"actions"`
}

// New assembles a plan from the reconcilers' action groups, preserving
// group order: all user actions first, then the per-role grant actions.
func New(id string, groups ...[]Action) *Plan {
	p := &Plan{ID: id}
	for _, g := range groups {
		p.Actions = append(p.Actions, g...)
	}
	return p
}

// Empty reports whether the plan contains no actions (a no-op run).
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}

// SQL renders the full plan as an atomic statement block. An empty plan
// renders to an empty string: no transaction is opened for a no-op run.
func (p *Plan) SQL() string {
	if p.Empty() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- snowsync plan %s\n", p.ID)
	b.WriteString("BEGIN;\n")
	for _, a := range p.Actions {
		b.WriteString(a.SQL())
		b.WriteString("\n")
	}
	b.WriteString("COMMIT;\n")
	return b.String()
}

// YAML renders the plan for inspection tooling.
func (p *Plan) YAML() (string, error) {
	out, err := yaml.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Summary returns per-kind action counts for run reporting.
func (p *Plan) Summary() map[Kind]int {
	counts := make(map[Kind]int)
	for _, a := range p.Actions {
		counts[a.Kind]++
	}
	return counts
}

// StatementCount returns the number of statements in the rendered block,
// including the transaction framing.
func (p *Plan) StatementCount() int {
	if p.Empty() {
		return 0
	}
	return len(p.Actions) + 2
}

// State is the terminal disposition of a plan.
type State string

// Terminal plan states. Aborted runs never produce an Outcome; they
// surface as errors before any mutation is attempted.
const (
	StateNoop     State = "noop"
	StateApplied  State = "applied"
	StateRendered State = "rendered"
)

// Outcome is the result of a completed (non-aborted) reconciliation run.
type Outcome struct {
	State State
	Plan  *Plan
	// Rendered holds the statement block text in dry-run mode.
	Rendered string
}
