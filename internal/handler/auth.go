package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskzero/taskzero/internal/handler/dto"
	"github.com/taskzero/taskzero/internal/service"
)

// AuthHandler handles HTTP requests for the login endpoint.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Token handles POST /auth/token.
// Accepts a form-encoded body with "username" (the email) and "password",
// mirroring the OAuth2 password-grant request shape.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.svc.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Single combined message; the boundary does not reveal
			// which field was wrong.
			writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Incorrect email or password!")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("login_succeeded", "email", email)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
