package repository

import "errors"

var (
	// ErrNotFound means no row matched the lookup.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate key")
)
