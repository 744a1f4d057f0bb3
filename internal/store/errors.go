package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when an insert collides with an
	// existing username.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateCity is returned when a user already tracks a city
	// with the same name.
	ErrDuplicateCity = errors.New("city already tracked")
)
