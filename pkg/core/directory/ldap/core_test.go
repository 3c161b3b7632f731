//
//  Copyright © Manetu Inc. All rights reserved.
//

package ldap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainBase(t *testing.T) {
	assert.Equal(t, "DC=example,DC=com",
		domainBase("CN=snowflake-role-analyst,OU=Snowflake,DC=example,DC=com"))
	assert.Equal(t, "DC=corp,DC=example,DC=net",
		domainBase("CN=g, OU=a, OU=b, DC=corp, DC=example, DC=net"))
	assert.Equal(t, "", domainBase("CN=orphan"))
}

func TestMemberFilterEscapesSpecials(t *testing.T) {
	f := memberFilter(`CN=weird(group),DC=example,DC=com`)
	assert.Equal(t, `(memberOf=CN=weird\28group\29,DC=example,DC=com)`, f)
}

func TestAccountDisabled(t *testing.T) {
	assert.False(t, accountDisabled("512"))   // NORMAL_ACCOUNT
	assert.True(t, accountDisabled("514"))    // NORMAL_ACCOUNT | ACCOUNTDISABLE
	assert.True(t, accountDisabled("66050"))  // disabled + DONT_EXPIRE_PASSWORD
	assert.False(t, accountDisabled("66048")) // enabled + DONT_EXPIRE_PASSWORD
	assert.False(t, accountDisabled(""))
	assert.False(t, accountDisabled("not-a-number"))
}

func TestIsGroup(t *testing.T) {
	assert.True(t, isGroup([]string{"top", "group"}))
	assert.True(t, isGroup([]string{"Top", "Group"}))
	assert.False(t, isGroup([]string{"top", "person", "organizationalPerson", "user"}))
	assert.False(t, isGroup(nil))
}
