package repository

import "errors"

// Common repository errors. GORM/driver errors are mapped to these at the
// persistence boundary so services never inspect database internals.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means an insert or update violated a unique constraint.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// Per-resource aliases, kept for readable call sites.
var (
	ErrUserNotFound = ErrNotFound
	ErrRoomNotFound = ErrNotFound
	ErrPetNotFound  = ErrNotFound
)
