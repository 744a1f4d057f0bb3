package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weatherbook/webapp/internal/mailer"
	"github.com/weatherbook/webapp/internal/store"
	"go.uber.org/zap"
)

// ErrUnknownEmail is returned when no account matches the supplied
// address. The page tells the requester to register first.
var ErrUnknownEmail = errors.New("no user with this email")

const resetMailSubject = "Password Reset Request"

// TokenIssuer signs and verifies password-reset tokens.
type TokenIssuer interface {
	Issue(userID int) (string, error)
	Verify(tokenString string) (int, error)
}

// ResetService implements the emailed password-reset flow: issue a
// signed, time-limited token bound to a user id, mail it as a link, and
// later consume it to set a new password.
type ResetService struct {
	users   UserRepository
	issuer  TokenIssuer
	mailer  mailer.Mailer
	baseURL string
	logger  *zap.Logger
}

func NewResetService(users UserRepository, issuer TokenIssuer, m mailer.Mailer, baseURL string, logger *zap.Logger) *ResetService {
	return &ResetService{
		users:   users,
		issuer:  issuer,
		mailer:  m,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Request looks the user up by email, issues a token and mails the reset
// link. A failed send surfaces as mailer.ErrDeliveryFailed so the user
// can retry.
func (s *ResetService) Request(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownEmail
		}
		return err
	}

	tokenString, err := s.issuer.Issue(user.ID)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/password_reset_email/%s", s.baseURL, tokenString)
	body := fmt.Sprintf(`To reset your password visit the following link:
%s

If you did not make this request then simply ignore this email and no changes will be made.
`, link)

	if err := s.mailer.Send(ctx, user.Email, resetMailSubject, body); err != nil {
		return err
	}

	s.logger.Info("reset mail sent", zap.Int("user_id", user.ID))
	return nil
}

// Verify checks a token without consuming it and returns the embedded
// user id. token.ErrExpired and token.ErrInvalid are distinct outcomes.
func (s *ResetService) Verify(tokenString string) (int, error) {
	return s.issuer.Verify(tokenString)
}

// Consume re-verifies the token and overwrites the user's password.
func (s *ResetService) Consume(ctx context.Context, tokenString, newPassword string) error {
	userID, err := s.issuer.Verify(tokenString)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return ErrMissingFields
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}

	s.logger.Info("password reset via token", zap.Int("user_id", userID))
	return nil
}
