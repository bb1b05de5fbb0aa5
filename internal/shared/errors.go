package shared

import "errors"

var (
	// ErrInvalidInput indicates a rejected operation due to bad caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict indicates a resource was already claimed by another operation.
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates resource not found in the active company scope.
	ErrNotFound = errors.New("not found")
	// ErrInconsistent indicates an internal invariant violation.
	ErrInconsistent = errors.New("inconsistent state")
)
