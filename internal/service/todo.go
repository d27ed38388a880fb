package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskzero/taskzero/internal/auth"
	"github.com/taskzero/taskzero/internal/metrics"
	"github.com/taskzero/taskzero/internal/model"
	"github.com/taskzero/taskzero/internal/repository"
)

// Todo service errors.
var (
	// ErrTodoNotFound covers both a genuinely missing todo and one owned
	// by another user. Foreign todos are filtered at the query level and
	// deliberately surface as not-found, not as permission-denied.
	ErrTodoNotFound = errors.New("todo not found")
	ErrInvalidTitle = errors.New("title must not be empty")
	ErrInvalidState = errors.New("invalid todo state")
)

const maxTitleLength = 256

// TodoStore is the persistence capability for todo records.
// Implemented by *repository.Repository.
type TodoStore interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	GetTodoForUser(ctx context.Context, id, userID int64) (*model.Todo, error)
	ListTodos(ctx context.Context, filter repository.TodoFilter) ([]*model.Todo, error)
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id, userID int64) error
}

// TodoService handles todo business logic. Every operation is scoped to
// the acting identity; there is no path that reads or mutates another
// user's todos.
type TodoService struct {
	store   TodoStore
	metrics metrics.Recorder
}

// NewTodoService creates a new TodoService.
func NewTodoService(store TodoStore, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{
		store:   store,
		metrics: recorder,
	}
}

// CreateTodoInput defines input for creating a todo.
type CreateTodoInput struct {
	Title       string
	Description string
	State       model.TodoState
}

// Create adds a todo owned by the acting identity.
func (s *TodoService) Create(ctx context.Context, identity *auth.Identity, input CreateTodoInput) (*model.Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}

	state := input.State
	if state == "" {
		state = model.StateDraft
	}
	if !state.IsValid() {
		return nil, ErrInvalidState
	}

	todo := &model.Todo{
		Title:       title,
		Description: input.Description,
		State:       state,
		UserID:      identity.ID,
	}

	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	s.metrics.IncTodoCreated()

	return todo, nil
}

// ListTodosInput defines filters for listing todos.
type ListTodosInput struct {
	Title       string
	Description string
	State       model.TodoState
	Offset      int
	Limit       int
}

// List retrieves the acting identity's todos matching the filters.
func (s *TodoService) List(ctx context.Context, identity *auth.Identity, input ListTodosInput) ([]*model.Todo, error) {
	if input.State != "" && !input.State.IsValid() {
		return nil, ErrInvalidState
	}

	todos, err := s.store.ListTodos(ctx, repository.TodoFilter{
		UserID:      identity.ID,
		Title:       input.Title,
		Description: input.Description,
		State:       input.State,
		Offset:      input.Offset,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return todos, nil
}

// Patch applies a partial update to a todo owned by the acting identity.
func (s *TodoService) Patch(ctx context.Context, identity *auth.Identity, id int64, patch model.TodoPatch) (*model.Todo, error) {
	if patch.State != nil && !patch.State.IsValid() {
		return nil, ErrInvalidState
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" || len(trimmed) > maxTitleLength {
			return nil, ErrInvalidTitle
		}
		patch.Title = &trimmed
	}

	todo, err := s.store.GetTodoForUser(ctx, id, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo for patch: %w", err)
	}

	patch.Apply(todo)

	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("update todo: %w", err)
	}

	s.metrics.IncTodoUpdated()

	return todo, nil
}

// Delete removes a todo owned by the acting identity.
func (s *TodoService) Delete(ctx context.Context, identity *auth.Identity, id int64) error {
	if err := s.store.DeleteTodo(ctx, id, identity.ID); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("delete todo: %w", err)
	}

	s.metrics.IncTodoDeleted()

	return nil
}
