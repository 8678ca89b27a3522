package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemberRoleAtLeast(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleManager))
	assert.True(t, RoleOwner.AtLeast(RoleOwner))
	assert.True(t, RoleManager.AtLeast(RoleMember))
	assert.False(t, RoleManager.AtLeast(RoleOwner))
	assert.False(t, RoleMember.AtLeast(RoleManager))

	// Unknown roles hold no privilege at all.
	assert.False(t, MemberRole("dj").AtLeast(RoleMember))
}

func TestMemberRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleManager.Valid())
	assert.True(t, RoleMember.Valid())
	assert.False(t, MemberRole("dj").Valid())
	assert.False(t, MemberRole("").Valid())
}
