package services

import (
	"context"
	"errors"
	"strings"

	"github.com/weatherbook/webapp/internal/store"
	"github.com/weatherbook/webapp/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMissingFields is returned when a required field is empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers must not distinguish the two in user-facing
	// messaging.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongPassword is returned when the current password supplied to
	// an in-session password change does not match.
	ErrWrongPassword = errors.New("current password does not match")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo   UserRepository
	logger *zap.Logger
}

func NewUserService(repo UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register hashes the password and creates the account. A username
// collision surfaces as store.ErrDuplicateUsername.
func (s *UserService) Register(ctx context.Context, username, email, password string) (types.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return types.User{}, ErrMissingFields
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	})
	if err != nil {
		return types.User{}, err
	}

	s.logger.Info("user registered", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords both return ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// ChangePassword performs the in-session password change: the current
// password must match before the new one is stored.
func (s *UserService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingFields
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	return s.SetPassword(ctx, userID, newPassword)
}

// SetPassword re-hashes and overwrites without checking the old value.
// Used by the reset-token flow, where the token itself is the authority.
func (s *UserService) SetPassword(ctx context.Context, userID int, newPassword string) error {
	if newPassword == "" {
		return ErrMissingFields
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Int("user_id", userID))
	return nil
}

func hashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
