package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleGateTable(t *testing.T) {
	cases := []struct {
		action Action
		admin  bool
		user   bool
	}{
		{ActionListTasks, true, true},
		{ActionCreateTask, true, false},
		{ActionUpdateTask, true, true},
		{ActionCompleteTask, true, true},
		{ActionDeleteTask, true, false},
		{ActionReadActivity, true, false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.admin, Allowed(RoleAdmin, tc.action), "ADMIN %s", tc.action)
		require.Equal(t, tc.user, Allowed(RoleUser, tc.action), "USER %s", tc.action)
	}
}

func TestRoleGateDeniesOutsideTable(t *testing.T) {
	require.False(t, Allowed(RoleAdmin, Action("drop_tables")))
	require.False(t, Allowed(Role("SUPERADMIN"), ActionDeleteTask))
	require.False(t, Allowed(Role(""), ActionListTasks))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("ADMIN")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, role)

	role, err = ParseRole("USER")
	require.NoError(t, err)
	require.Equal(t, RoleUser, role)

	_, err = ParseRole("admin")
	require.Error(t, err)
	_, err = ParseRole("")
	require.Error(t, err)
}
