package services

import (
	"context"
	"errors"
	"testing"

	"github.com/weatherbook/webapp/internal/store"
	"go.uber.org/zap"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo(), zap.NewNop())
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user id to be set")
	}
	if user.PasswordHash == "pw1" {
		t.Fatalf("password stored in plaintext")
	}

	got, err := svc.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("user id mismatch: got %d want %d", got.ID, user.ID)
	}
}

func TestAuthenticate_GenericFailure(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo(), zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@x.com", "pw1"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// Wrong password and unknown username must be indistinguishable.
	_, wrongPass := svc.Authenticate(ctx, "alice", "wrong")
	_, noUser := svc.Authenticate(ctx, "bob", "pw1")
	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(noUser, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", noUser)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err = svc.Register(ctx, "alice", "other@x.com", "pw2")
	if !errors.Is(err, store.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	// The first account is unchanged and still authenticates.
	unchanged, err := svc.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if unchanged.Email != first.Email {
		t.Fatalf("email changed: got %q want %q", unchanged.Email, first.Email)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo(), zap.NewNop())
	ctx := context.Background()

	for _, args := range [][3]string{
		{"", "a@x.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@x.com", ""},
	} {
		if _, err := svc.Register(ctx, args[0], args[1], args[2]); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("args %v: expected ErrMissingFields, got %v", args, err)
		}
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo(), zap.NewNop())
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "old-pass")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "bad-guess", "new-pass"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "old-pass", "new-pass"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "alice", "old-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted")
	}
	if _, err := svc.Authenticate(ctx, "alice", "new-pass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
