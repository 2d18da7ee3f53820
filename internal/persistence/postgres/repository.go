// Package postgres provides the durable repositories backing the task
// store, the audit ledger, and the credential lookup.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Maleek6526/TaskManagerApplication/internal/domain"
)

// Repository implements the domain repository interfaces over pgx.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = "id, title, description, completed, created_by_id, created_at, updated_at"

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Completed, &task.CreatedByID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// FindByUsername implements domain.UserRepository.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT id, username, password_hash, role FROM users WHERE username=$1`
	var user domain.User
	var rawRole string
	err := r.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &rawRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	user.Role = role
	return &user, nil
}

// List returns all tasks newest id first.
func (r *Repository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Completed, &task.CreatedByID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Create implements domain.TaskRepository.
func (r *Repository) Create(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	const stmt = `INSERT INTO tasks (title, description, created_by_id)
        VALUES ($1,$2,$3) RETURNING ` + taskColumns
	return scanTask(r.pool.QueryRow(ctx, stmt, draft.Title, draft.Description, draft.CreatedByID))
}

// Get implements domain.TaskRepository. Missing ids return (nil, nil).
func (r *Repository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, id))
}

// Update applies the patch inside a transaction. The row lock serializes
// concurrent updates on the same task id.
func (r *Repository) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, tx.Commit(ctx)
	}

	patch.Apply(current)

	const stmt = `UPDATE tasks SET title=$2, description=$3, completed=$4, updated_at=now()
        WHERE id=$1 RETURNING ` + taskColumns
	updated, err := scanTask(tx.QueryRow(ctx, stmt, id, current.Title, current.Description, current.Completed))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task and returns the deleted snapshot.
func (r *Repository) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `DELETE FROM tasks WHERE id=$1 RETURNING `+taskColumns, id))
}

// Record appends one audit event. There is no update or delete path for
// activity_log, and task_id carries no foreign key so events outlive
// their task.
func (r *Repository) Record(ctx context.Context, entry domain.ActivityEntry) (*domain.ActivityEvent, error) {
	const stmt = `INSERT INTO activity_log (action, user_id, task_id, details)
        VALUES ($1,$2,$3,$4) RETURNING id, created_at`
	event := domain.ActivityEvent{
		Action:  entry.Action,
		UserID:  entry.UserID,
		TaskID:  entry.TaskID,
		Details: entry.Details,
	}
	err := r.pool.QueryRow(ctx, stmt, string(entry.Action), entry.UserID, entry.TaskID, entry.Details).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns the audit trail newest id first.
func (r *Repository) ListEvents(ctx context.Context) ([]domain.ActivityEvent, error) {
	const query = `SELECT id, action, user_id, task_id, details, created_at
        FROM activity_log ORDER BY id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.ActivityEvent, 0)
	for rows.Next() {
		var event domain.ActivityEvent
		var rawAction string
		if err := rows.Scan(&event.ID, &rawAction, &event.UserID, &event.TaskID, &event.Details, &event.CreatedAt); err != nil {
			return nil, err
		}
		event.Action = domain.EventAction(rawAction)
		events = append(events, event)
	}
	return events, rows.Err()
}
