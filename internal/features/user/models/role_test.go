package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"SuperAdmin", "Admin", "Voter"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
		assert.True(t, role.Valid())
	}

	for _, invalid := range []string{"", "voter", "ADMIN", "Moderator", "Super Admin"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q must be rejected", invalid)
		assert.False(t, Role(invalid).Valid())
	}
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, RoleSuperAdmin.IsAdmin())
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleVoter.IsAdmin())

	assert.True(t, RoleAdmin.CanManageUsers())
	assert.True(t, RoleAdmin.CanManageAthletes())
	assert.False(t, RoleVoter.CanManageUsers())
	assert.False(t, RoleVoter.CanManageAthletes())
}

func TestDefaultRoleIsLeastPrivileged(t *testing.T) {
	assert.Equal(t, RoleVoter, DefaultRole)
	assert.False(t, DefaultRole.IsAdmin())
}
