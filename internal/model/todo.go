package model

import "time"

// TodoState is the lifecycle state of a task.
type TodoState string

// Valid task states.
const (
	StateDraft TodoState = "draft"
	StateTodo  TodoState = "todo"
	StateDoing TodoState = "doing"
	StateDone  TodoState = "done"
	StateTrash TodoState = "trash"
)

// IsValid reports whether the state is one of the known values.
func (s TodoState) IsValid() bool {
	switch s {
	case StateDraft, StateTodo, StateDoing, StateDone, StateTrash:
		return true
	}
	return false
}

// Todo represents a task owned by a single user.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	State       TodoState `json:"state"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoPatch carries a partial update. A nil field means "leave unchanged";
// a set field is applied by the caller. No reflection involved.
type TodoPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	State       *TodoState `json:"state,omitempty"`
}

// Apply copies the set fields of the patch onto the todo.
func (p *TodoPatch) Apply(todo *Todo) {
	if p.Title != nil {
		todo.Title = *p.Title
	}
	if p.Description != nil {
		todo.Description = *p.Description
	}
	if p.State != nil {
		todo.State = *p.State
	}
}

// IsEmpty reports whether the patch sets no fields.
func (p *TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.State == nil
}
