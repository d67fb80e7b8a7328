package service

import "errors"

var (
	// ErrDuplicateUsername is returned by Register when a user with the same
	// username (case-insensitive) already exists.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials covers both unknown-username and wrong-password so
	// login failures do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotFound covers records that are absent or owned by another user;
	// callers cannot distinguish the two cases.
	ErrNotFound = errors.New("not found")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
