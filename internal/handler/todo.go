package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskzero/taskzero/internal/auth"
	"github.com/taskzero/taskzero/internal/handler/dto"
	"github.com/taskzero/taskzero/internal/model"
	"github.com/taskzero/taskzero/internal/service"
)

// TodoHandler handles HTTP requests for todo operations.
// All routes require the auth middleware; the acting identity is taken
// from the request context.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	identity := auth.MustIdentityFromContext(r.Context())

	todo, err := h.svc.Create(r.Context(), identity, service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_created",
		"todo_id", todo.ID,
		"user_id", identity.ID,
	)

	writeJSON(w, http.StatusCreated, dto.ToTodoResponse(todo))
}

// List handles GET /todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	identity := auth.MustIdentityFromContext(r.Context())

	todos, err := h.svc.List(r.Context(), identity, service.ListTodosInput{
		Title:       query.Get("title"),
		Description: query.Get("description"),
		State:       model.TodoState(query.Get("state")),
		Offset:      parseIntParam(query.Get("offset")),
		Limit:       parseIntParam(query.Get("limit")),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodoListResponse(todos))
}

// Patch handles PATCH /todos/{id}.
func (h *TodoHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	var req dto.PatchTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	identity := auth.MustIdentityFromContext(r.Context())

	todo, err := h.svc.Patch(r.Context(), identity, id, req.ToPatch())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_updated",
		"todo_id", todo.ID,
		"user_id", identity.ID,
	)

	writeJSON(w, http.StatusOK, dto.ToTodoResponse(todo))
}

// Delete handles DELETE /todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	identity := auth.MustIdentityFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), identity, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_deleted",
		"todo_id", id,
		"user_id", identity.ID,
	)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Task deleted!"})
}

// handleServiceError maps todo service errors to HTTP responses.
// An ownership mismatch never reaches this map as permission-denied:
// foreign todos surface as ErrTodoNotFound from the service.
func (h *TodoHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, "TASK_NOT_FOUND", "Task not found!")
	case errors.Is(err, service.ErrInvalidTitle):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_TITLE", "Title must not be empty")
	case errors.Is(err, service.ErrInvalidState):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_STATE", "Invalid todo state")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// todoIDParam extracts and validates the {id} path parameter.
func todoIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Todo ID must be an integer")
		return 0, false
	}
	return id, true
}
