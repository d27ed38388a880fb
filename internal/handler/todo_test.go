package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/taskzero/taskzero/internal/auth"
	"github.com/taskzero/taskzero/internal/handler/dto"
	"github.com/taskzero/taskzero/internal/model"
	"github.com/taskzero/taskzero/internal/service"
	"github.com/taskzero/taskzero/internal/testutil"
)

// newTodoRouter mounts the todo routes with the given identity standing
// in for an authenticated caller.
func newTodoRouter(h *TodoHandler, identity *auth.Identity) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/todos", func(r chi.Router) {
		r.Use(injectIdentity(identity))
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Patch("/{id}", h.Patch)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func newTodoFixture(t *testing.T) (*service.TodoService, *TodoHandler) {
	t.Helper()
	svc := service.NewTodoService(testutil.NewMemStore(), nil)
	return svc, NewTodoHandler(svc, testLogger())
}

func seedTodo(t *testing.T, svc *service.TodoService, identity *auth.Identity, title string) *model.Todo {
	t.Helper()
	todo, err := svc.Create(context.Background(), identity, service.CreateTodoInput{
		Title:       title,
		Description: "description of " + title,
		State:       model.StateTodo,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return todo
}

func TestTodoCreate(t *testing.T) {
	t.Parallel()

	_, h := newTodoFixture(t)
	identity := &auth.Identity{ID: 1, Email: "user@test.com"}
	router := newTodoRouter(h, identity)

	req := httptest.NewRequest(http.MethodPost, "/todos/", jsonBody(t, map[string]string{
		"title":       "Test",
		"description": "a task",
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TodoResponse
	decodeBody(t, rec, &resp)
	if resp.ID == 0 || resp.UserID != identity.ID {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.State != model.StateDraft {
		t.Errorf("expected default draft state, got %q", resp.State)
	}
}

func TestTodoCreate_InvalidState(t *testing.T) {
	t.Parallel()

	_, h := newTodoFixture(t)
	router := newTodoRouter(h, &auth.Identity{ID: 1, Email: "user@test.com"})

	req := httptest.NewRequest(http.MethodPost, "/todos/", jsonBody(t, map[string]string{
		"title": "Test",
		"state": "archived",
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTodoList(t *testing.T) {
	t.Parallel()

	svc, h := newTodoFixture(t)
	alice := &auth.Identity{ID: 1, Email: "alice@test.com"}
	bob := &auth.Identity{ID: 2, Email: "bob@test.com"}

	seedTodo(t, svc, alice, "buy milk")
	seedTodo(t, svc, alice, "buy bread")
	seedTodo(t, svc, bob, "bob task")

	router := newTodoRouter(h, alice)

	req := httptest.NewRequest(http.MethodGet, "/todos/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list dto.TodoListResponse
	decodeBody(t, rec, &list)
	if len(list.Todos) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(list.Todos))
	}

	// Title filter narrows the listing.
	req = httptest.NewRequest(http.MethodGet, "/todos/?title=milk", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decodeBody(t, rec, &list)
	if len(list.Todos) != 1 || list.Todos[0].Title != "buy milk" {
		t.Errorf("unexpected filtered listing: %+v", list.Todos)
	}
}

func TestTodoList_InvalidStateFilter(t *testing.T) {
	t.Parallel()

	_, h := newTodoFixture(t)
	router := newTodoRouter(h, &auth.Identity{ID: 1, Email: "user@test.com"})

	req := httptest.NewRequest(http.MethodGet, "/todos/?state=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestTodoPatch(t *testing.T) {
	t.Parallel()

	svc, h := newTodoFixture(t)
	identity := &auth.Identity{ID: 1, Email: "user@test.com"}
	todo := seedTodo(t, svc, identity, "original")
	router := newTodoRouter(h, identity)

	req := httptest.NewRequest(http.MethodPatch, "/todos/1", jsonBody(t, map[string]string{
		"state": "done",
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.TodoResponse
	decodeBody(t, rec, &resp)
	if resp.State != model.StateDone {
		t.Errorf("expected done state, got %q", resp.State)
	}
	if resp.Title != todo.Title {
		t.Errorf("unset field should be untouched, got %q", resp.Title)
	}
}

func TestTodoPatch_ForeignTodo(t *testing.T) {
	t.Parallel()

	svc, h := newTodoFixture(t)
	alice := &auth.Identity{ID: 1, Email: "alice@test.com"}
	bob := &auth.Identity{ID: 2, Email: "bob@test.com"}
	seedTodo(t, svc, alice, "private task")

	router := newTodoRouter(h, bob)

	// Another user's todo is reported as missing, not forbidden.
	req := httptest.NewRequest(http.MethodPatch, "/todos/1", jsonBody(t, map[string]string{
		"title": "hijacked",
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	requireError(t, rec, http.StatusNotFound, "Task not found!")
}

func TestTodoDelete(t *testing.T) {
	t.Parallel()

	svc, h := newTodoFixture(t)
	identity := &auth.Identity{ID: 1, Email: "user@test.com"}
	seedTodo(t, svc, identity, "to delete")
	router := newTodoRouter(h, identity)

	req := httptest.NewRequest(http.MethodDelete, "/todos/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.MessageResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "Task deleted!" {
		t.Errorf("unexpected message: %q", resp.Message)
	}

	// Second delete of the same id reports not-found.
	req = httptest.NewRequest(http.MethodDelete, "/todos/1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	requireError(t, rec, http.StatusNotFound, "Task not found!")
}

func TestTodoIDParam_NotAnInteger(t *testing.T) {
	t.Parallel()

	_, h := newTodoFixture(t)
	router := newTodoRouter(h, &auth.Identity{ID: 1, Email: "user@test.com"})

	req := httptest.NewRequest(http.MethodDelete, "/todos/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
