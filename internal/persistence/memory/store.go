// Package memory provides in-memory repositories used for tests and for
// degraded-mode operation when Postgres is unreachable at startup.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Maleek6526/TaskManagerApplication/internal/domain"
)

// Store keeps tasks, audit events, and users in process memory. It
// implements all three domain repository interfaces. Mutations on a task
// id serialize on the store mutex.
type Store struct {
	mu          sync.RWMutex
	tasks       map[int64]domain.Task
	events      []domain.ActivityEvent
	users       map[string]domain.User
	nextTaskID  int64
	nextEventID int64
	now         func() time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		tasks:       make(map[int64]domain.Task),
		users:       make(map[string]domain.User),
		nextTaskID:  1,
		nextEventID: 1,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SeedUser registers an account. Accounts are otherwise immutable; the
// core has no user-creation path.
func (s *Store) SeedUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = int64(len(s.users) + 1)
	}
	s.users[user.Username] = user
}

// FindByUsername implements domain.UserRepository.
func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// List returns tasks newest id first.
func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Create implements domain.TaskRepository.
func (s *Store) Create(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	task := domain.Task{
		ID:          s.nextTaskID,
		Title:       draft.Title,
		Description: draft.Description,
		Completed:   false,
		CreatedByID: draft.CreatedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextTaskID++
	s.tasks[task.ID] = task
	return &task, nil
}

// Get implements domain.TaskRepository. Missing ids return (nil, nil).
func (s *Store) Get(ctx context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// Update applies only the fields present in the patch; everything else
// keeps its stored value. updated_at always advances.
func (s *Store) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&task)
	task.UpdatedAt = s.now()
	s.tasks[id] = task
	return &task, nil
}

// Delete removes the task and returns the deleted snapshot.
func (s *Store) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	delete(s.tasks, id)
	return &task, nil
}

// Record implements domain.ActivityRepository. Events are append-only.
func (s *Store) Record(ctx context.Context, entry domain.ActivityEntry) (*domain.ActivityEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event := domain.ActivityEvent{
		ID:        s.nextEventID,
		Action:    entry.Action,
		UserID:    entry.UserID,
		TaskID:    entry.TaskID,
		Details:   entry.Details,
		CreatedAt: s.now(),
	}
	s.nextEventID++
	s.events = append(s.events, event)
	return &event, nil
}

// ListEvents returns the audit trail newest id first.
func (s *Store) ListEvents(ctx context.Context) ([]domain.ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ActivityEvent, len(s.events))
	for i, event := range s.events {
		out[len(s.events)-1-i] = event
	}
	return out, nil
}
