package accounting

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable classifies backend failures: unreachable database,
	// failed statements, broken transactions. Runs failing with it are safe
	// to retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnboundedFilter is returned by mutating Store calls given a zero
	// filter.
	ErrUnboundedFilter = errors.New("refusing to mutate with an empty filter")

	// ErrNotFound is returned by lookups for a missing record.
	ErrNotFound = errors.New("record not found")
)

// StorageError represents an error from the storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "postgres", "memory", ...)
	Operation string // Operation that failed ("delete_accounts", "close_sessions", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is reports ErrStoreUnavailable for every StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
