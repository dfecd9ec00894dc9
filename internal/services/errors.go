package services

import "errors"

// Domain error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; services wrap them with fmt.Errorf("...: %w") for context.
var (
	// ErrConflict signals a uniqueness violation (username, email, word term).
	ErrConflict = errors.New("conflict")
	// ErrNotFound signals that the addressed user or word does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials signals a failed password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden signals a role mismatch on a role-restricted surface.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument signals a malformed value, e.g. an unknown category.
	ErrInvalidArgument = errors.New("invalid argument")
)
