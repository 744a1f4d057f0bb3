package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/weatherbook/webapp/types"
)

const (
	sessionName        = "weatherbook_session"
	sessionKeyUserID   = "user_id"
	sessionKeyUsername = "username"

	// rememberMaxAge keeps the session alive across browser restarts
	// when the user ticks "remember me".
	rememberMaxAge = 30 * 24 * 60 * 60
)

// Identity is the authenticated user attached to a request. It is
// passed explicitly through the request context rather than read from
// ambient state, so handlers and services stay testable.
type Identity struct {
	UserID   int
	Username string
}

// SessionManager owns the cookie-backed session: login state and
// flashed status messages.
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(secret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// SignIn establishes a session for the user. With remember the cookie
// persists for thirty days, otherwise it lasts the browsing session.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, user types.User, remember bool) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[sessionKeyUserID] = user.ID
	session.Values[sessionKeyUsername] = user.Username
	if remember {
		session.Options.MaxAge = rememberMaxAge
	} else {
		session.Options.MaxAge = 0
	}
	return session.Save(r, w)
}

// SignOut clears the identity. Flashes already queued survive the
// redirect that follows.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	delete(session.Values, sessionKeyUserID)
	delete(session.Values, sessionKeyUsername)
	return session.Save(r, w)
}

// Current returns the identity stored in the session, if any.
func (m *SessionManager) Current(r *http.Request) (Identity, bool) {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return Identity{}, false
	}
	userID, ok := session.Values[sessionKeyUserID].(int)
	if !ok || userID < 1 {
		return Identity{}, false
	}
	username, _ := session.Values[sessionKeyUsername].(string)
	return Identity{UserID: userID, Username: username}, true
}

// Flash queues a status message for the next rendered page.
func (m *SessionManager) Flash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := m.store.Get(r, sessionName)
	session.AddFlash(message)
	_ = session.Save(r, w)
}

// Flashes drains queued status messages.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := m.store.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) > 0 {
		_ = session.Save(r, w)
	}
	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}

// RequireAuth gates protected routes. Anonymous requests are redirected
// to the landing page rather than answered with an error.
func (m *SessionManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.Current(r)
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
