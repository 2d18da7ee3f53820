package domain

import "fmt"

// Role is the closed set of access tiers known to the service.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole validates a raw role string from a token or a database row.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Action identifies an operation subject to the role gate.
type Action string

const (
	ActionListTasks    Action = "list_tasks"
	ActionCreateTask   Action = "create_task"
	ActionUpdateTask   Action = "update_task"
	ActionCompleteTask Action = "complete_task"
	ActionDeleteTask   Action = "delete_task"
	ActionReadActivity Action = "read_activity"
)

// Allowed reports whether a role may perform an action. The table is
// exhaustive: any pair outside it is denied.
func Allowed(role Role, action Action) bool {
	switch action {
	case ActionListTasks, ActionUpdateTask, ActionCompleteTask:
		return role == RoleAdmin || role == RoleUser
	case ActionCreateTask, ActionDeleteTask, ActionReadActivity:
		return role == RoleAdmin
	}
	return false
}
