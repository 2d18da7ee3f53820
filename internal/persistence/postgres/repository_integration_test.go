//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Maleek6526/TaskManagerApplication/internal/domain"
)

func TestRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("taskboard"),
		postgrescontainer.WithUsername("taskboard"),
		postgrescontainer.WithPassword("taskboard"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	runMigrations(t, ctx, pool)

	repo := NewRepository(pool)

	_, err = pool.Exec(ctx, `INSERT INTO users (username, password_hash, role) VALUES ('admin', 'x', 'ADMIN')`)
	require.NoError(t, err)

	account, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, account)
	require.Equal(t, domain.RoleAdmin, account.Role)

	ghost, err := repo.FindByUsername(ctx, "ghost")
	require.NoError(t, err)
	require.Nil(t, ghost)

	created, err := repo.Create(ctx, domain.TaskDraft{Title: "T", Description: "D", CreatedByID: account.ID})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.Completed)

	// Partial update: only the title moves.
	title := "T2"
	updated, err := repo.Update(ctx, created.ID, domain.TaskPatch{Title: &title, Touched: true})
	require.NoError(t, err)
	require.Equal(t, "T2", updated.Title)
	require.Equal(t, "D", updated.Description)
	require.False(t, updated.Completed)
	require.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	missing, err := repo.Update(ctx, created.ID+100, domain.TaskPatch{Title: &title, Touched: true})
	require.NoError(t, err)
	require.Nil(t, missing)

	second, err := repo.Create(ctx, domain.TaskDraft{Title: "U", Description: "D", CreatedByID: account.ID})
	require.NoError(t, err)

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, second.ID, tasks[0].ID, "list must be newest id first")

	details := "Created T"
	event, err := repo.Record(ctx, domain.ActivityEntry{
		Action:  domain.EventCreateTask,
		UserID:  account.ID,
		TaskID:  &created.ID,
		Details: &details,
	})
	require.NoError(t, err)
	require.NotZero(t, event.ID)

	snapshot, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "T2", snapshot.Title)

	gone, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, gone)

	// Events outlive the deleted task.
	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, domain.EventCreateTask, events[0].Action)
	require.NotNil(t, events[0].TaskID)
	require.Equal(t, created.ID, *events[0].TaskID)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func runMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)

	path := filepath.Join(filepath.Dir(thisFile), "../../../db/postgres/migrations/0001_init.up.sql")
	sql, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, string(sql))
	require.NoError(t, err)
}
