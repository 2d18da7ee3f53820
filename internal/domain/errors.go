package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden indicates an authenticated identity whose role does not
	// permit the attempted action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput indicates a request rejected before touching the store.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidCredentials is returned for unknown users and wrong
	// passwords alike, so login failures are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuditError reports the one integrity violation the pipeline can produce:
// the task mutation committed but the audit write failed, leaving a
// mutation with no trail. The mutation is not rolled back.
type AuditError struct {
	Action EventAction
	TaskID int64
	Err    error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("mutation %s on task %d committed but audit write failed: %v", e.Action, e.TaskID, e.Err)
}

func (e *AuditError) Unwrap() error { return e.Err }
