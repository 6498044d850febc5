package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// SessionName is the browser session cookie.
const SessionName = "it_inventory_session"

// Sessions keeps the logged-in user in a signed cookie for browser clients.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions returns a cookie store signed with secret. secure marks the cookie HTTPS-only.
func NewSessions(secret []byte, maxAge time.Duration, secure bool) *Sessions {
	store := sessions.NewCookieStore(secret)
	store.MaxAge(int(maxAge.Seconds()))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return &Sessions{store: store}
}

// Save starts a session for p.
func (s *Sessions) Save(w http.ResponseWriter, r *http.Request, p Principal) error {
	sess, _ := s.store.Get(r, SessionName)
	sess.Values["user_id"] = p.UserID
	sess.Values["username"] = p.Username
	sess.Values["role"] = p.Role
	return sess.Save(r, w)
}

// Load returns the session principal. A missing, expired or tampered cookie is no session.
func (s *Sessions) Load(r *http.Request) (Principal, bool) {
	sess, err := s.store.Get(r, SessionName)
	if err != nil || sess.IsNew {
		return Principal{}, false
	}
	username, _ := sess.Values["username"].(string)
	if username == "" {
		return Principal{}, false
	}
	id, _ := sess.Values["user_id"].(int)
	role, _ := sess.Values["role"].(string)
	return Principal{UserID: id, Username: username, Role: role}, true
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, SessionName)
	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}
	return sess.Save(r, w)
}
