package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/weatherbook/webapp/internal/mailer"
	"github.com/weatherbook/webapp/internal/services"
	"github.com/weatherbook/webapp/internal/token"
	"go.uber.org/zap"
)

// ResetHandler serves the two password flows: the in-session change and
// the emailed reset-token flow for users locked out of their account.
type ResetHandler struct {
	users    *services.UserService
	resets   *services.ResetService
	sessions *SessionManager
	logger   *zap.Logger
}

func NewResetHandler(users *services.UserService, resets *services.ResetService, sessions *SessionManager, logger *zap.Logger) *ResetHandler {
	return &ResetHandler{users: users, resets: resets, sessions: sessions, logger: logger}
}

// ResetRouter registers the password routes on the given router.
func ResetRouter(r chi.Router, users *services.UserService, resets *services.ResetService, sessions *SessionManager, logger *zap.Logger) {
	handler := NewResetHandler(users, resets, sessions, logger)

	r.With(sessions.RequireAuth).Get("/reset_password", handler.ChangePasswordForm)
	r.With(sessions.RequireAuth).Post("/reset_password", handler.ChangePassword)
	r.Get("/password_reset_email", handler.RequestForm)
	r.Post("/password_reset_email", handler.Request)
	r.Get("/password_reset_email/{token}", handler.ConsumeForm)
	r.Post("/password_reset_email/{token}", handler.Consume)
}

func (h *ResetHandler) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	render(w, "passwordreset.html", pageData{Flashes: h.sessions.Flashes(w, r)})
}

// ChangePassword verifies the current password and stores the new one.
// On success the session is cleared so the user logs in again.
func (h *ResetHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	switch {
	case currentPassword == "" || newPassword == "" || confirmPassword == "":
		h.sessions.Flash(w, r, "Please fill the form completely!")
	case newPassword != confirmPassword:
		h.sessions.Flash(w, r, "New password and confirm password you have entered is not same!")
	default:
		err := h.users.ChangePassword(r.Context(), identity.UserID, currentPassword, newPassword)
		switch {
		case err == nil:
			h.sessions.Flash(w, r, "Your password is changed successfully. Now you can login with your new password")
			_ = h.sessions.SignOut(w, r)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		case errors.Is(err, services.ErrWrongPassword):
			h.sessions.Flash(w, r, "Current password you have entered is not correct!")
		default:
			h.logger.Error("password change failed", zap.Error(err))
			h.sessions.Flash(w, r, "Something went wrong. Please try again")
		}
	}

	render(w, "passwordreset.html", pageData{Flashes: h.sessions.Flashes(w, r)})
}

func (h *ResetHandler) RequestForm(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}
	render(w, "email.html", pageData{Flashes: h.sessions.Flashes(w, r)})
}

// Request mails a reset link to the given address.
func (h *ResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}

	email := r.FormValue("email")
	if email == "" {
		h.sessions.Flash(w, r, "You missed to enter your Email")
		http.Redirect(w, r, "/password_reset_email", http.StatusSeeOther)
		return
	}

	err := h.resets.Request(r.Context(), email)
	switch {
	case err == nil:
		h.sessions.Flash(w, r, "Email has been successfully sent on your mail id with password reset information")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, services.ErrUnknownEmail):
		h.sessions.Flash(w, r, "No user found with this email id. You must register first")
		http.Redirect(w, r, "/password_reset_email", http.StatusSeeOther)
	case errors.Is(err, mailer.ErrDeliveryFailed):
		h.sessions.Flash(w, r, "Your internet connection is failed. Please check the internet connection")
		http.Redirect(w, r, "/password_reset_email", http.StatusSeeOther)
	default:
		h.logger.Error("reset request failed", zap.Error(err))
		h.sessions.Flash(w, r, "Something went wrong. Please try again")
		http.Redirect(w, r, "/password_reset_email", http.StatusSeeOther)
	}
}

// ConsumeForm shows the new-password form after verifying the token.
func (h *ResetHandler) ConsumeForm(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}

	tokenString := chi.URLParam(r, "token")
	if _, err := h.resets.Verify(tokenString); err != nil {
		h.redirectBadToken(w, r, err)
		return
	}

	render(w, "reset_password.html", pageData{
		Flashes: h.sessions.Flashes(w, r),
		Token:   tokenString,
	})
}

// Consume re-verifies the token and sets the new password.
func (h *ResetHandler) Consume(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}

	tokenString := chi.URLParam(r, "token")
	newPassword := r.FormValue("newpassword")
	confirmPassword := r.FormValue("confirmpassword")

	switch {
	case newPassword == "" || confirmPassword == "":
		h.sessions.Flash(w, r, "Please fill the form completely!")
	case newPassword != confirmPassword:
		h.sessions.Flash(w, r, "Put same password in both the password fields")
	default:
		err := h.resets.Consume(r.Context(), tokenString, newPassword)
		switch {
		case err == nil:
			h.sessions.Flash(w, r, "Your password is changed successfully. Now you can login with your new password")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		case errors.Is(err, token.ErrExpired), errors.Is(err, token.ErrInvalid):
			h.redirectBadToken(w, r, err)
			return
		default:
			h.logger.Error("reset consume failed", zap.Error(err))
			h.sessions.Flash(w, r, "Something went wrong. Please try again")
		}
	}

	render(w, "reset_password.html", pageData{
		Flashes: h.sessions.Flashes(w, r),
		Token:   tokenString,
	})
}

// redirectBadToken flashes distinct messages for expired and invalid
// tokens and sends the user back to the request-a-new-token flow.
func (h *ResetHandler) redirectBadToken(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, token.ErrExpired) {
		h.sessions.Flash(w, r, "The token is Expired. Generate new token")
	} else {
		h.sessions.Flash(w, r, "The token is Invalid. Generate new token")
	}
	http.Redirect(w, r, "/password_reset_email", http.StatusSeeOther)
}

func (h *ResetHandler) redirectAuthenticated(w http.ResponseWriter, r *http.Request) bool {
	identity, ok := h.sessions.Current(r)
	if ok {
		http.Redirect(w, r, weatherPath(identity.Username), http.StatusSeeOther)
	}
	return ok
}
