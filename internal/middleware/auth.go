package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated user of a request.
type Principal struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the principal may manage users.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

type key string

const principalKey key = "principal"

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal stored by RequireAuth.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Actor is the username recorded on changes made by this request, fallback when anonymous.
func Actor(ctx context.Context, fallback string) string {
	if p, ok := PrincipalFrom(ctx); ok && p.Username != "" {
		return p.Username
	}
	return fallback
}

// ==========================
// Bearer tokens
// ==========================

type claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for p that expires after ttl.
func IssueToken(secret []byte, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		UserID:   p.UserID,
		Username: p.Username,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

// ParseToken validates a token from IssueToken.
func ParseToken(secret []byte, token string) (Principal, error) {
	var c claims
	t, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Principal{}, err
	}
	if !t.Valid || c.Username == "" {
		return Principal{}, errors.New("invalid token")
	}
	return Principal{UserID: c.UserID, Username: c.Username, Role: c.Role}, nil
}

// ==========================
// Guards
// ==========================

// RequireAuth accepts a bearer token or a session cookie and stores the principal in the
// request context. Anything else gets 401.
func RequireAuth(secret []byte, sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if h := r.Header.Get("Authorization"); h != "" {
				token, ok := strings.CutPrefix(h, "Bearer ")
				if !ok {
					jsonError(w, "invalid authorization header", http.StatusUnauthorized)
					return
				}
				p, err := ParseToken(secret, strings.TrimSpace(token))
				if err != nil {
					jsonError(w, "invalid token", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			}

			if sessions != nil {
				if p, ok := sessions.Load(r); ok {
					next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
					return
				}
			}
			jsonError(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

// RequireAdmin rejects non-admin principals with 403. Use after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			jsonError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !p.IsAdmin() {
			jsonError(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
