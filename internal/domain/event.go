package domain

import "time"

// EventAction tags an audit event with the mutation that produced it.
type EventAction string

const (
	EventCreateTask   EventAction = "CREATE_TASK"
	EventUpdateTask   EventAction = "UPDATE_TASK"
	EventCompleteTask EventAction = "COMPLETE_TASK"
	EventDeleteTask   EventAction = "DELETE_TASK"
)

// ActivityEvent is one immutable row of the audit trail. Events are never
// updated or deleted, and they outlive the task they reference.
type ActivityEvent struct {
	ID        int64
	Action    EventAction
	UserID    int64
	TaskID    *int64
	Details   *string
	CreatedAt time.Time
}

// ActivityEntry is the payload handed to the recorder; the store assigns
// the id and timestamp.
type ActivityEntry struct {
	Action  EventAction
	UserID  int64
	TaskID  *int64
	Details *string
}
