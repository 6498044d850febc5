package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

func okHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	w.Write([]byte(p.Username))
}

func TestRequireAuth_Bearer(t *testing.T) {
	token, err := IssueToken(testSecret, Principal{UserID: 3, Username: "alice", Role: "viewer"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	h := RequireAuth(testSecret, nil)(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/fetchData/systems", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.String() != "alice" {
		t.Errorf("principal: got %q, want alice", rec.Body.String())
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	expired, _ := IssueToken(testSecret, Principal{Username: "alice"}, -time.Minute)
	other, _ := IssueToken([]byte("other-secret"), Principal{Username: "alice"}, time.Hour)

	tests := []struct {
		name   string
		header string
	}{
		{"no credentials", ""},
		{"not bearer", "Basic abc"},
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + other},
	}
	h := RequireAuth(testSecret, NewSessions(testSecret, time.Hour, false))(http.HandlerFunc(okHandler))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireAuth_Session(t *testing.T) {
	sessions := NewSessions(testSecret, time.Hour, false)

	login := httptest.NewRecorder()
	if err := sessions.Save(login, httptest.NewRequest(http.MethodPost, "/login", nil), Principal{UserID: 1, Username: "bob", Role: "admin"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cookies := login.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	h := RequireAuth(testSecret, sessions)(RequireAdmin(http.HandlerFunc(okHandler)))
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "bob" {
		t.Errorf("got %d %q, want 200 bob", rec.Code, rec.Body.String())
	}
}

func TestRequireAdmin_Forbidden(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{Username: "v", Role: "viewer"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := Actor(req.Context(), "admin"); got != "admin" {
		t.Errorf("anonymous actor: got %q", got)
	}
	ctx := WithPrincipal(req.Context(), Principal{Username: "carol"})
	if got := Actor(ctx, "admin"); got != "carol" {
		t.Errorf("actor: got %q", got)
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(0, 2)
	h := l.Middleware(http.HandlerFunc(okHandler))

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request: got %d, want 429", last)
	}
}
