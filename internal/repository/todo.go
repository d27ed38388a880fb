package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taskzero/taskzero/internal/model"
)

// ErrTodoNotFound is returned when no todo matches the id within the
// acting user's scope. A todo owned by a different user is
// indistinguishable from a missing one at this layer.
var ErrTodoNotFound = errors.New("todo not found")

// TodoFilter defines filters for listing todos. All queries are scoped
// to a single owner; substring filters match anywhere in the column.
type TodoFilter struct {
	UserID      int64
	Title       string
	Description string
	State       model.TodoState
	Offset      int
	Limit       int
}

// CreateTodo inserts a new todo and fills in its generated id and timestamps.
func (r *Repository) CreateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		INSERT INTO todos (title, description, state, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	err := r.pool.QueryRow(ctx, query,
		todo.Title,
		todo.Description,
		todo.State,
		todo.UserID,
		todo.CreatedAt,
		todo.UpdatedAt,
	).Scan(&todo.ID)

	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// GetTodoForUser retrieves a todo by id, scoped to its owner.
func (r *Repository) GetTodoForUser(ctx context.Context, id, userID int64) (*model.Todo, error) {
	query := `
		SELECT id, title, description, state, user_id, created_at, updated_at
		FROM todos
		WHERE id = $1 AND user_id = $2
	`

	var todo model.Todo
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&todo.ID,
		&todo.Title,
		&todo.Description,
		&todo.State,
		&todo.UserID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return &todo, nil
}

// ListTodos retrieves the owner's todos matching the filter, ordered by id.
func (r *Repository) ListTodos(ctx context.Context, filter TodoFilter) ([]*model.Todo, error) {
	query := `
		SELECT id, title, description, state, user_id, created_at, updated_at
		FROM todos
		WHERE user_id = $1
	`
	args := []any{filter.UserID}

	if filter.Title != "" {
		args = append(args, "%"+filter.Title+"%")
		query += fmt.Sprintf(" AND title LIKE $%d", len(args))
	}
	if filter.Description != "" {
		args = append(args, "%"+filter.Description+"%")
		query += fmt.Sprintf(" AND description LIKE $%d", len(args))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		query += fmt.Sprintf(" AND state = $%d", len(args))
	}

	query += " ORDER BY id"

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		var todo model.Todo
		if err := rows.Scan(
			&todo.ID,
			&todo.Title,
			&todo.Description,
			&todo.State,
			&todo.UserID,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, &todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// UpdateTodo replaces the mutable fields of a todo, scoped to its owner.
func (r *Repository) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		UPDATE todos
		SET title = $3, description = $4, state = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`

	todo.UpdatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Description,
		todo.State,
		todo.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}

	return nil
}

// DeleteTodo removes a todo by id, scoped to its owner.
func (r *Repository) DeleteTodo(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}

	return nil
}
