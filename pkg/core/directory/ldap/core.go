//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package ldap implements the directory source against Active Directory.
package ldap

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/pkg/errors"

	"github.com/manetu/snowsync/internal/logging"
	"github.com/manetu/snowsync/pkg/core/model"
)

var logger = logging.GetLogger("snowsync.directory")

const agent = "ldap"

// ACCOUNTDISABLE bit of the AD userAccountControl attribute.
const accountDisableFlag = 0x2

// securityGroupFilter matches security-enabled groups; the matching-rule
// OID tests the GROUP_TYPE_SECURITY_ENABLED bit of groupType.
const securityGroupFilter = "(&(objectCategory=group)(groupType:1.2.840.113556.1.4.803:=2147483648))"

// Config holds the connection settings for an Active Directory source.
type Config struct {
	URL      string
	BindDN   string
	Password string
}

// Source is a directory.Source backed by a single LDAP connection.
type Source struct {
	conn *ldap.Conn
}

// Dial connects and binds to the directory.
func Dial(cfg Config) (*Source, error) {
	conn, err := ldap.DialURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing directory %s", cfg.URL)
	}

	if cfg.BindDN != "" {
		if err := conn.Bind(cfg.BindDN, cfg.Password); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "binding as %s", cfg.BindDN)
		}
	}

	return &Source{conn: conn}, nil
}

// Close releases the LDAP connection.
func (s *Source) Close() error {
	return s.conn.Close()
}

// ListSecurityGroups returns descriptors for the security groups directly
// under the OU.
func (s *Source) ListSecurityGroups(ctx context.Context, ou string) ([]model.DirectoryGroup, error) {
	req := ldap.NewSearchRequest(
		ou,
		ldap.ScopeSingleLevel, ldap.NeverDerefAliases, 0, 0, false,
		securityGroupFilter,
		[]string{"cn"},
		nil,
	)

	res, err := s.conn.Search(req)
	if err != nil {
		return nil, errors.Wrapf(err, "searching security groups under %s", ou)
	}

	groups := make([]model.DirectoryGroup, 0, len(res.Entries))
	for _, e := range res.Entries {
		groups = append(groups, model.DirectoryGroup{
			DN:   e.DN,
			Name: e.GetAttributeValue("cn"),
		})
	}

	logger.Debugf(agent, "listSecurityGroups", "found %d security groups under %s", len(groups), ou)
	return groups, nil
}

// ResolveMembers expands the group to its effective member login names.
// Nested groups are walked breadth-first with a visited guard, so member
// cycles terminate.
func (s *Source) ResolveMembers(ctx context.Context, group model.DirectoryGroup, loginAttribute string) ([]string, error) {
	base := domainBase(group.DN)

	visited := map[string]bool{}
	queue := []string{group.DN}
	logins := map[string]bool{}

	for len(queue) > 0 {
		dn := queue[0]
		queue = queue[1:]
		if visited[dn] {
			continue
		}
		visited[dn] = true

		req := ldap.NewSearchRequest(
			base,
			ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
			memberFilter(dn),
			[]string{"objectClass", "userAccountControl", loginAttribute},
			nil,
		)

		res, err := s.conn.Search(req)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving members of %s", dn)
		}

		for _, e := range res.Entries {
			if isGroup(e.GetAttributeValues("objectClass")) {
				queue = append(queue, e.DN)
				continue
			}
			if accountDisabled(e.GetAttributeValue("userAccountControl")) {
				continue
			}
			if login := e.GetAttributeValue(loginAttribute); login != "" {
				logins[login] = true
			}
		}
	}

	out := make([]string, 0, len(logins))
	for login := range logins {
		out = append(out, login)
	}
	logger.Debugf(agent, "resolveMembers", "group %s resolved to %d logins", group.DN, len(out))
	return out, nil
}

// memberFilter matches direct members of the given group DN.
func memberFilter(groupDN string) string {
	return fmt.Sprintf("(memberOf=%s)", ldap.EscapeFilter(groupDN))
}

// domainBase reduces a DN to its domain components, yielding the search
// base for membership queries that may leave the OU.
func domainBase(dn string) string {
	var dcs []string
	for _, part := range strings.Split(dn, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToUpper(part), "DC=") {
			dcs = append(dcs, part)
		}
	}
	return strings.Join(dcs, ",")
}

func isGroup(objectClasses []string) bool {
	for _, oc := range objectClasses {
		if strings.EqualFold(oc, "group") {
			return true
		}
	}
	return false
}

// accountDisabled decodes the AD userAccountControl attribute. Accounts
// with an unparsable or absent value are treated as enabled; the login
// attribute check still applies.
func accountDisabled(uac string) bool {
	v, err := strconv.ParseInt(uac, 10, 64)
	if err != nil {
		return false
	}
	return v&accountDisableFlag != 0
}
