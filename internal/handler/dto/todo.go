package dto

import (
	"time"

	"github.com/taskzero/taskzero/internal/model"
)

// CreateTodoRequest represents the request body for creating a todo.
type CreateTodoRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	State       model.TodoState `json:"state,omitempty"`
}

// PatchTodoRequest represents the request body for a partial todo update.
// Pointer fields distinguish "absent" from "set to zero value".
type PatchTodoRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	State       *model.TodoState `json:"state,omitempty"`
}

// ToPatch converts the request into a model patch object.
func (r *PatchTodoRequest) ToPatch() model.TodoPatch {
	return model.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		State:       r.State,
	}
}

// TodoResponse represents a todo in API responses.
type TodoResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	State       model.TodoState `json:"state"`
	UserID      int64           `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TodoListResponse represents a list of todos.
type TodoListResponse struct {
	Todos []TodoResponse `json:"todos"`
}

// ToTodoResponse converts a Todo model to TodoResponse DTO.
func ToTodoResponse(todo *model.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		State:       todo.State,
		UserID:      todo.UserID,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

// ToTodoListResponse converts a slice of Todo models to TodoListResponse.
func ToTodoListResponse(todos []*model.Todo) TodoListResponse {
	out := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		out = append(out, ToTodoResponse(todo))
	}
	return TodoListResponse{Todos: out}
}
