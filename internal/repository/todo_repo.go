package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"donezo/internal/model"
	"donezo/pkg/metrics"
)

const todoColumns = `id, task, category, completed, created_at, updated_at`

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS todos (
		id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		task       TEXT NOT NULL,
		category   TEXT NOT NULL,
		completed  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at DESC, id DESC);
`

type TodoRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTodoRepository(db *pgxpool.Pool, logger *zap.Logger) *TodoRepository {
	return &TodoRepository{db: db, logger: logger}
}

// EnsureSchema creates the todos table when it does not exist yet.
func (r *TodoRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableSQL); err != nil {
		r.logger.Error("Failed to create todos table", zap.Error(err))
		return fmt.Errorf("create todos table: %w", err)
	}
	r.logger.Info("Todos table ready")
	return nil
}

func (r *TodoRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// List returns every todo, most recently created first. Rows created in the
// same instant are ordered by descending id.
func (r *TodoRepository) List(ctx context.Context) ([]model.Todo, error) {
	r.logger.Debug("Listing todos")
	defer observe("select", time.Now())

	rows, err := r.db.Query(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.logger.Error("Failed to query todos", zap.Error(err))
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			r.logger.Error("Failed to scan todo row", zap.Error(err))
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate todo rows", zap.Error(err))
		return nil, fmt.Errorf("list todos: %w", err)
	}

	r.logger.Debug("Todos listed successfully", zap.Int("count", len(todos)))
	return todos, nil
}

func (r *TodoRepository) Create(ctx context.Context, task, category string) (model.Todo, error) {
	r.logger.Debug("Inserting todo",
		zap.String("task", task),
		zap.String("category", category),
	)
	defer observe("insert", time.Now())

	query := `
		INSERT INTO todos (task, category)
		VALUES ($1, $2)
		RETURNING ` + todoColumns

	t, err := scanTodo(r.db.QueryRow(ctx, query, task, category))
	if err != nil {
		r.logger.Error("Failed to insert todo", zap.Error(err))
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}

	r.logger.Info("Todo inserted successfully", zap.Int64("todo_id", t.ID))
	return t, nil
}

// Update replaces task, category and completed of todo id and refreshes
// updated_at. It returns model.ErrTodoNotFound when no row matched.
func (r *TodoRepository) Update(ctx context.Context, id int64, task, category string, completed bool) (model.Todo, error) {
	r.logger.Debug("Updating todo",
		zap.Int64("todo_id", id),
		zap.Bool("completed", completed),
	)
	defer observe("update", time.Now())

	query := `
		UPDATE todos
		SET task = $1,
		    category = $2,
		    completed = $3,
		    updated_at = GREATEST(now(), created_at)
		WHERE id = $4
		RETURNING ` + todoColumns

	t, err := scanTodo(r.db.QueryRow(ctx, query, task, category, completed, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Info("Todo to update not found", zap.Int64("todo_id", id))
			return model.Todo{}, model.ErrTodoNotFound
		}
		r.logger.Error("Failed to update todo", zap.Error(err), zap.Int64("todo_id", id))
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}

	r.logger.Info("Todo updated successfully", zap.Int64("todo_id", id))
	return t, nil
}

// Delete removes todo id. It returns model.ErrTodoNotFound when no row matched.
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Debug("Deleting todo", zap.Int64("todo_id", id))
	defer observe("delete", time.Now())

	result, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete todo", zap.Error(err), zap.Int64("todo_id", id))
		return fmt.Errorf("delete todo: %w", err)
	}

	rowsAffected := result.RowsAffected()
	r.logger.Info("Todo delete executed",
		zap.Int64("todo_id", id),
		zap.Int64("rows_affected", rowsAffected),
	)
	if rowsAffected == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(
		&t.ID,
		&t.Task,
		&t.Category,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQueryDuration(operation, "todos", time.Since(start))
}
