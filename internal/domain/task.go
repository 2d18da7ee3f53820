package domain

import "time"

// Task is the canonical task record owned by the task store.
type Task struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	CreatedByID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskDraft carries the fields the store needs to mint a new task.
// The store assigns the id and timestamps.
type TaskDraft struct {
	Title       string
	Description string
	CreatedByID int64
}

// TaskPatch is a partial update. A nil field means the caller did not
// supply that field with the correct type, and the stored value is kept.
// Touched records whether the request named at least one known field at
// all: a wrong-typed field satisfies validation but applies nothing, so
// the update succeeds and only updated_at moves.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Touched     bool
}

// Apply copies the present fields onto a task.
func (p TaskPatch) Apply(task *Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
}
