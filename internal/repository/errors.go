package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound represents a row that does not exist in the store.
type ErrNotFound struct {
	Resource string // The sheet or record kind (e.g., "idea")
	ID       string // The identifier that was not found
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

// NewNotFound creates a new ErrNotFound.
func NewNotFound(resource, id string) ErrNotFound {
	return ErrNotFound{Resource: resource, ID: id}
}

// IsNotFound checks if an error is a repository not found error.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// ErrConflict represents a create whose id is already stored.
type ErrConflict struct {
	Resource string
	ID       string
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("%s with ID '%s' already exists", e.Resource, e.ID)
}

func IsConflict(err error) bool {
	var c ErrConflict
	return errors.As(err, &c)
}

// ErrNotConfigured is returned by the placeholder repository when no backend is set.
var ErrNotConfigured = errors.New("storage backend not configured")
