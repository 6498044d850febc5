package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/it-inventory/internal/middleware"
	"github.com/crucial707/it-inventory/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Sessions *middleware.Sessions
	Secret   []byte
	// TokenTTL is the bearer token lifetime (default 24h).
	TokenTTL time.Duration
}

// ==========================
// Login (starts a browser session and returns a bearer token)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !validateInput(w, input) {
		return
	}

	user, err := h.UserRepo.Authenticate(r.Context(), strings.TrimSpace(input.Username), input.Password)
	if errors.Is(err, repo.ErrInvalidCredentials) {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "login failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	p := middleware.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token, err := middleware.IssueToken(h.Secret, p, ttl)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	if h.Sessions != nil {
		if err := h.Sessions.Save(w, r, p); err != nil {
			slog.ErrorContext(r.Context(), "save session failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
	}

	slog.InfoContext(r.Context(), "user logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// ==========================
// Check Auth
// ==========================

// CheckAuth reports whether the caller has a valid session or bearer token. It always
// answers 200 so browser clients can poll it.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"username":      p.Username,
		"role":          p.Role,
	})
}

func (h *AuthHandler) principal(r *http.Request) (middleware.Principal, bool) {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		p, err := middleware.ParseToken(h.Secret, strings.TrimSpace(token))
		return p, err == nil
	}
	if h.Sessions != nil {
		return h.Sessions.Load(r)
	}
	return middleware.Principal{}, false
}

// ==========================
// Logout
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.Sessions != nil {
		if err := h.Sessions.Clear(w, r); err != nil {
			slog.ErrorContext(r.Context(), "clear session failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
