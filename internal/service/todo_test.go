package service

import (
	"context"
	"errors"
	"testing"

	"github.com/taskzero/taskzero/internal/auth"
	"github.com/taskzero/taskzero/internal/model"
	"github.com/taskzero/taskzero/internal/testutil"
)

var (
	alice = &auth.Identity{ID: 1, Email: "alice@test.com"}
	bob   = &auth.Identity{ID: 2, Email: "bob@test.com"}
)

func createTestTodo(t *testing.T, svc *TodoService, identity *auth.Identity, title string, state model.TodoState) *model.Todo {
	t.Helper()
	todo, err := svc.Create(context.Background(), identity, CreateTodoInput{
		Title:       title,
		Description: "description of " + title,
		State:       state,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return todo
}

func TestTodoService_Create(t *testing.T) {
	t.Parallel()

	svc := NewTodoService(testutil.NewMemStore(), nil)

	todo := createTestTodo(t, svc, alice, "Test", model.StateDraft)

	if todo.ID == 0 {
		t.Error("expected generated id")
	}
	if todo.UserID != alice.ID {
		t.Errorf("todo must be owned by the acting identity, got owner %d", todo.UserID)
	}
}

func TestTodoService_Create_DefaultsToDraft(t *testing.T) {
	t.Parallel()

	svc := NewTodoService(testutil.NewMemStore(), nil)

	todo, err := svc.Create(context.Background(), alice, CreateTodoInput{Title: "Test"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if todo.State != model.StateDraft {
		t.Errorf("expected draft state, got %s", todo.State)
	}
}

func TestTodoService_Create_Invalid(t *testing.T) {
	t.Parallel()

	svc := NewTodoService(testutil.NewMemStore(), nil)

	if _, err := svc.Create(context.Background(), alice, CreateTodoInput{Title: "  "}); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("expected ErrInvalidTitle, got %v", err)
	}

	_, err := svc.Create(context.Background(), alice, CreateTodoInput{Title: "Test", State: "archived"})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestTodoService_List_ScopedToOwner(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewTodoService(store, nil)

	createTestTodo(t, svc, alice, "alice task", model.StateTodo)
	createTestTodo(t, svc, alice, "alice other", model.StateDone)
	createTestTodo(t, svc, bob, "bob task", model.StateTodo)

	todos, err := svc.List(context.Background(), alice, ListTodosInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(todos))
	}
	for _, todo := range todos {
		if todo.UserID != alice.ID {
			t.Errorf("listing leaked a foreign todo: %+v", todo)
		}
	}
}

func TestTodoService_List_Filters(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewTodoService(store, nil)

	createTestTodo(t, svc, alice, "buy milk", model.StateTodo)
	createTestTodo(t, svc, alice, "buy bread", model.StateDone)
	createTestTodo(t, svc, alice, "call mom", model.StateTodo)

	todos, err := svc.List(context.Background(), alice, ListTodosInput{Title: "buy"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 2 {
		t.Errorf("title filter: expected 2 todos, got %d", len(todos))
	}

	todos, err = svc.List(context.Background(), alice, ListTodosInput{State: model.StateDone})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 1 {
		t.Errorf("state filter: expected 1 todo, got %d", len(todos))
	}

	todos, err = svc.List(context.Background(), alice, ListTodosInput{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 1 {
		t.Errorf("pagination: expected 1 todo, got %d", len(todos))
	}

	if _, err := svc.List(context.Background(), alice, ListTodosInput{State: "bogus"}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestTodoService_Patch(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewTodoService(store, nil)

	todo := createTestTodo(t, svc, alice, "original", model.StateDraft)

	newTitle := "updated title"
	patched, err := svc.Patch(context.Background(), alice, todo.ID, model.TodoPatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if patched.Title != "updated title" {
		t.Errorf("expected updated title, got %q", patched.Title)
	}
	if patched.Description != todo.Description {
		t.Errorf("unset field should be untouched, got %q", patched.Description)
	}
}

func TestTodoService_Patch_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewTodoService(testutil.NewMemStore(), nil)

	if _, err := svc.Patch(context.Background(), alice, 666, model.TodoPatch{}); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestTodoService_Patch_ForeignTodoIsNotFound(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewTodoService(store, nil)

	todo := createTestTodo(t, svc, alice, "alice task", model.StateTodo)

	newTitle := "hijacked"
	// Another user's todo surfaces as not-found, never permission-denied.
	_, err := svc.Patch(context.Background(), bob, todo.ID, model.TodoPatch{Title: &newTitle})
	if !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
	if errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatal("foreign todo mutation must not surface as permission denied")
	}
}

func TestTodoService_Delete(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	svc := NewTodoService(store, nil)

	todo := createTestTodo(t, svc, alice, "to delete", model.StateTodo)

	// Foreign delete reports not-found and leaves the todo in place.
	if err := svc.Delete(context.Background(), bob, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound for foreign delete, got %v", err)
	}

	if err := svc.Delete(context.Background(), alice, todo.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := svc.Delete(context.Background(), alice, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound after delete, got %v", err)
	}
}
