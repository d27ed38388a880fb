// Package testutil provides shared helpers for tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/taskzero/taskzero/internal/model"
	"github.com/taskzero/taskzero/internal/repository"
)

// MemStore is an in-memory stand-in for *repository.Repository that
// honors the repository error contract. It satisfies the store
// interfaces consumed by the service layer and the auth resolver.
type MemStore struct {
	mu         sync.Mutex
	users      map[int64]*model.User
	todos      map[int64]*model.Todo
	nextUserID int64
	nextTodoID int64
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[int64]*model.User),
		todos: make(map[int64]*model.Todo),
	}
}

// CreateUser mirrors repository.CreateUser, including the distinct
// duplicate-username and duplicate-email errors.
func (f *MemStore) CreateUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	f.nextUserID++
	user.ID = f.nextUserID
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

// GetUserByID mirrors repository.GetUserByID.
func (f *MemStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// GetUserByEmail mirrors repository.GetUserByEmail.
func (f *MemStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// UserByEmail is the auth.UserStore adapter: (nil, nil) when absent.
func (f *MemStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := f.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil
	}
	return user, nil
}

// ListUsers mirrors repository.ListUsers.
func (f *MemStore) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := make([]*model.User, 0, len(f.users))
	for id := int64(1); id <= f.nextUserID; id++ {
		if u, ok := f.users[id]; ok {
			clone := *u
			users = append(users, &clone)
		}
	}
	if offset > 0 {
		if offset >= len(users) {
			return []*model.User{}, nil
		}
		users = users[offset:]
	}
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

// UpdateUser mirrors repository.UpdateUser.
func (f *MemStore) UpdateUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range f.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

// DeleteUser mirrors repository.DeleteUser, cascading to owned todos.
func (f *MemStore) DeleteUser(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	for tid, todo := range f.todos {
		if todo.UserID == id {
			delete(f.todos, tid)
		}
	}
	return nil
}

// CreateTodo mirrors repository.CreateTodo.
func (f *MemStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextTodoID++
	todo.ID = f.nextTodoID
	clone := *todo
	f.todos[todo.ID] = &clone
	return nil
}

// GetTodoForUser mirrors repository.GetTodoForUser: a foreign todo is
// indistinguishable from a missing one.
func (f *MemStore) GetTodoForUser(ctx context.Context, id, userID int64) (*model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return nil, repository.ErrTodoNotFound
	}
	clone := *todo
	return &clone, nil
}

// ListTodos mirrors repository.ListTodos.
func (f *MemStore) ListTodos(ctx context.Context, filter repository.TodoFilter) ([]*model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	todos := make([]*model.Todo, 0)
	for id := int64(1); id <= f.nextTodoID; id++ {
		todo, ok := f.todos[id]
		if !ok || todo.UserID != filter.UserID {
			continue
		}
		if filter.Title != "" && !strings.Contains(todo.Title, filter.Title) {
			continue
		}
		if filter.Description != "" && !strings.Contains(todo.Description, filter.Description) {
			continue
		}
		if filter.State != "" && todo.State != filter.State {
			continue
		}
		clone := *todo
		todos = append(todos, &clone)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(todos) {
			return []*model.Todo{}, nil
		}
		todos = todos[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(todos) {
		todos = todos[:filter.Limit]
	}
	return todos, nil
}

// UpdateTodo mirrors repository.UpdateTodo.
func (f *MemStore) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return repository.ErrTodoNotFound
	}
	clone := *todo
	f.todos[todo.ID] = &clone
	return nil
}

// DeleteTodo mirrors repository.DeleteTodo.
func (f *MemStore) DeleteTodo(ctx context.Context, id, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return repository.ErrTodoNotFound
	}
	delete(f.todos, id)
	return nil
}
