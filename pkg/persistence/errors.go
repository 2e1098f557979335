package persistence

import "errors"

var (
	// ErrEntityNotFound is returned when an entity is not found in the repository.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrDuplicateEntity is returned when a unique index rejects an insert.
	ErrDuplicateEntity = errors.New("entity already exists")
)
