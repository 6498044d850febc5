package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lib/pq"

	"github.com/crucial707/it-inventory/internal/models"
	"github.com/crucial707/it-inventory/internal/repo"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo *repo.UserRepo
}

// ==========================
// Create User (role defaults to viewer)
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Password string `json:"password" validate:"required,min=8,max=72"`
		Role     string `json:"role" validate:"omitempty,oneof=viewer admin"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !validateInput(w, input) {
		return
	}
	role := input.Role
	if role == "" {
		role = models.RoleViewer
	}

	user, err := h.Repo.Create(r.Context(), input.Username, input.Password, role)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			JSONError(w, "username already exists", http.StatusConflict)
			return
		}
		slog.ErrorContext(r.Context(), "create user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "user created", "username", user.Username, "role", user.Role)
	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Repo.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list users failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
