package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/weatherbook/webapp/internal/services"
	"github.com/weatherbook/webapp/internal/store"
	"go.uber.org/zap"
)

// AuthHandler serves the landing page and the signup/login/logout flows.
type AuthHandler struct {
	users    *services.UserService
	sessions *SessionManager
	logger   *zap.Logger
}

func NewAuthHandler(users *services.UserService, sessions *SessionManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, logger: logger}
}

// AuthRouter registers the account routes on the given router.
func AuthRouter(r chi.Router, users *services.UserService, sessions *SessionManager, logger *zap.Logger) {
	handler := NewAuthHandler(users, sessions, logger)

	r.Get("/", handler.Index)
	r.Get("/signup", handler.SignupForm)
	r.Post("/signup", handler.Signup)
	r.Get("/login", handler.LoginForm)
	r.Post("/login", handler.Login)
	r.Get("/logout", handler.Logout)
}

// Index redirects authenticated users to their weather page and shows
// the landing page to everyone else.
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if identity, ok := h.sessions.Current(r); ok {
		http.Redirect(w, r, weatherPath(identity.Username), http.StatusSeeOther)
		return
	}
	render(w, "index.html", pageData{Flashes: h.sessions.Flashes(w, r)})
}

func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}
	render(w, "signup.html", pageData{Flashes: h.sessions.Flashes(w, r)})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}

	username := r.FormValue("uname")
	email := r.FormValue("email")
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirmpassword")

	switch {
	case username == "" || email == "" || password == "" || confirmPassword == "":
		h.sessions.Flash(w, r, "You miss some of the entries. Please complete the entries")
	case password != confirmPassword:
		h.sessions.Flash(w, r, "Password fields not matched. Please enter same password in both the password fields")
	default:
		_, err := h.users.Register(r.Context(), username, email, password)
		switch {
		case err == nil:
			h.sessions.Flash(w, r, "You are successfully registered")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		case errors.Is(err, store.ErrDuplicateUsername):
			h.sessions.Flash(w, r, "Username already exists Please choose different Username")
		case errors.Is(err, services.ErrMissingFields):
			h.sessions.Flash(w, r, "You miss some of the entries. Please complete the entries")
		default:
			h.logger.Error("signup failed", zap.Error(err))
			h.sessions.Flash(w, r, "Something went wrong. Please try again")
		}
	}

	render(w, "signup.html", pageData{Flashes: h.sessions.Flashes(w, r)})
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}
	render(w, "login.html", pageData{Flashes: h.sessions.Flashes(w, r)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}

	username := r.FormValue("uname")
	password := r.FormValue("password")
	remember := r.FormValue("remember_me") == "on"

	user, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			h.logger.Error("login failed", zap.Error(err))
		}
		// One generic message for unknown username and wrong password.
		h.sessions.Flash(w, r, "Please enter correct Username and Password")
		render(w, "login.html", pageData{Flashes: h.sessions.Flashes(w, r)})
		return
	}

	if err := h.sessions.SignIn(w, r, user, remember); err != nil {
		h.logger.Error("session save failed", zap.Error(err))
		h.sessions.Flash(w, r, "Something went wrong. Please try again")
		render(w, "login.html", pageData{Flashes: h.sessions.Flashes(w, r)})
		return
	}

	http.Redirect(w, r, weatherPath(user.Username), http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.Current(r); ok {
		_ = h.sessions.SignOut(w, r)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) redirectAuthenticated(w http.ResponseWriter, r *http.Request) bool {
	identity, ok := h.sessions.Current(r)
	if ok {
		http.Redirect(w, r, weatherPath(identity.Username), http.StatusSeeOther)
	}
	return ok
}

func weatherPath(username string) string {
	return fmt.Sprintf("/weather/%s", username)
}
