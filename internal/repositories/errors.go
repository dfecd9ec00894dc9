package repositories

import "errors"

// Sentinel errors shared by every repository implementation so callers can
// branch with errors.Is regardless of the backing store.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)
