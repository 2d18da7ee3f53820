// Package domain defines the task entities, the role gate, and the
// mutation pipeline that every state-changing request flows through.
package domain

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Maleek6526/TaskManagerApplication/internal/observability"
)

// TaskRepository captures persistence operations over tasks. Lookups that
// miss return (nil, nil); the service maps that to ErrTaskNotFound.
type TaskRepository interface {
	List(ctx context.Context) ([]Task, error)
	Create(ctx context.Context, draft TaskDraft) (*Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Update(ctx context.Context, id int64, patch TaskPatch) (*Task, error)
	Delete(ctx context.Context, id int64) (*Task, error)
}

// ActivityRepository is the append-only audit ledger.
type ActivityRepository interface {
	Record(ctx context.Context, entry ActivityEntry) (*ActivityEvent, error)
	ListEvents(ctx context.Context) ([]ActivityEvent, error)
}

// UserRepository resolves login credentials. Unknown usernames return (nil, nil).
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// Service orchestrates verify → authorize → validate → mutate → record.
// Credential verification happens upstream in the auth middleware; every
// method here starts from an already-verified Identity.
type Service struct {
	tasks    TaskRepository
	activity ActivityRepository
	users    UserRepository
}

// NewService constructs a Service.
func NewService(tasks TaskRepository, activity ActivityRepository, users UserRepository) *Service {
	return &Service{tasks: tasks, activity: activity, users: users}
}

// Authenticate resolves a username/password pair to a user account.
// Unknown user and wrong password produce the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateTaskInput captures the payload from the API layer.
type CreateTaskInput struct {
	Title       string
	Description string
}

// ListTasks returns all tasks, newest id first. Read-only: no audit record.
func (s *Service) ListTasks(ctx context.Context, ident Identity) ([]Task, error) {
	if !Allowed(ident.Role, ActionListTasks) {
		observability.RecordDenied(string(ActionListTasks))
		return nil, ErrForbidden
	}
	return s.tasks.List(ctx)
}

// CreateTask mints a task and records a CREATE_TASK event.
func (s *Service) CreateTask(ctx context.Context, ident Identity, input CreateTaskInput) (*Task, error) {
	if !Allowed(ident.Role, ActionCreateTask) {
		observability.RecordDenied(string(ActionCreateTask))
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: title and description required", ErrInvalidInput)
	}

	task, err := s.tasks.Create(ctx, TaskDraft{
		Title:       input.Title,
		Description: input.Description,
		CreatedByID: ident.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, EventCreateTask, ident.ID, task.ID, "Created "+task.Title); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial update and records either UPDATE_TASK or
// COMPLETE_TASK. The tag is decided by the request's intent: COMPLETE_TASK
// if and only if the patch explicitly sets completed=true, regardless of
// the task's prior value.
func (s *Service) UpdateTask(ctx context.Context, ident Identity, id int64, patch TaskPatch) (*Task, error) {
	action := ActionUpdateTask
	event := EventUpdateTask
	if patch.Completed != nil && *patch.Completed {
		action = ActionCompleteTask
		event = EventCompleteTask
	}
	if !Allowed(ident.Role, action) {
		observability.RecordDenied(string(action))
		return nil, ErrForbidden
	}
	if !patch.Touched {
		return nil, fmt.Errorf("%w: at least one of title, description, completed required", ErrInvalidInput)
	}

	task, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	if err := s.record(ctx, event, ident.ID, task.ID, "Updated "+task.Title); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and records a DELETE_TASK event carrying the
// deleted snapshot's title. The event survives the task.
func (s *Service) DeleteTask(ctx context.Context, ident Identity, id int64) (*Task, error) {
	if !Allowed(ident.Role, ActionDeleteTask) {
		observability.RecordDenied(string(ActionDeleteTask))
		return nil, ErrForbidden
	}

	task, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	if err := s.record(ctx, EventDeleteTask, ident.ID, task.ID, "Deleted "+task.Title); err != nil {
		return nil, err
	}
	return task, nil
}

// ListActivity returns the audit trail, newest id first. Admin only.
func (s *Service) ListActivity(ctx context.Context, ident Identity) ([]ActivityEvent, error) {
	if !Allowed(ident.Role, ActionReadActivity) {
		observability.RecordDenied(string(ActionReadActivity))
		return nil, ErrForbidden
	}
	return s.activity.ListEvents(ctx)
}

// record appends the audit event for a mutation that already committed.
// A failure here is the pipeline's terminal AUDIT_FAILURE state: the
// mutation stands, and the error is surfaced rather than swallowed.
func (s *Service) record(ctx context.Context, action EventAction, userID, taskID int64, details string) error {
	entry := ActivityEntry{
		Action:  action,
		UserID:  userID,
		TaskID:  &taskID,
		Details: &details,
	}
	event, err := s.activity.Record(ctx, entry)
	if err != nil {
		observability.RecordAuditFailure(string(action))
		return &AuditError{Action: action, TaskID: taskID, Err: err}
	}
	observability.RecordMutation(string(action), event.CreatedAt)
	return nil
}
