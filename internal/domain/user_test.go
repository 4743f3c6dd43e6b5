package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Includes(t *testing.T) {
	assert.True(t, RoleAdministrator.Includes(RoleEditor))
	assert.True(t, RoleEditor.Includes(RoleRegisteredUser))
	assert.True(t, RoleRegisteredUser.Includes(RoleGuest))
	assert.True(t, RoleEditor.Includes(RoleEditor))
	assert.False(t, RoleEditor.Includes(RoleAdministrator))
	assert.False(t, Role("owner").Includes(RoleGuest))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleRegisteredUser, r)

	r, err = ParseRole("editor")
	require.NoError(t, err)
	assert.Equal(t, RoleEditor, r)

	_, err = ParseRole("Editor")
	assert.Error(t, err)

	_, err = ParseRole("guest")
	assert.Error(t, err)
}

func TestUser_RoleChecksAreExact(t *testing.T) {
	admin := &User{Role: RoleAdministrator}
	assert.True(t, admin.IsAdministrator())
	assert.False(t, admin.IsEditor())
	assert.True(t, admin.CanCurate())

	var guest *User
	assert.Equal(t, RoleGuest, guest.EffectiveRole())
	assert.False(t, guest.CanCurate())

	assert.Equal(t, RoleRegisteredUser, (&User{}).EffectiveRole())
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Wangari Maathai", (&User{FirstName: "Wangari", LastName: "Maathai"}).FullName())
	assert.Equal(t, "Wangari", (&User{FirstName: "Wangari"}).FullName())
}

func TestUser_ChangeRole(t *testing.T) {
	u := &User{Record: Record{ID: "usr-1"}, Email: "w@example.com", Role: RoleRegisteredUser}

	event, changed := u.ChangeRole(RoleEditor)
	require.True(t, changed)
	assert.Equal(t, RoleEditor, u.Role)
	assert.Equal(t, RoleRegisteredUser, event.From)
	assert.True(t, event.PromotedToEditor())
	assert.Equal(t, EventRoleChanged, event.EventName())

	_, changed = u.ChangeRole(RoleEditor)
	assert.False(t, changed)

	event, _ = u.ChangeRole(RoleAdministrator)
	assert.False(t, event.PromotedToEditor())
}
