package service

import "errors"

var (
	// ErrNotFound means the referenced transaction does not exist.
	ErrNotFound = errors.New("transaction not found")
	// ErrNotAuthorized means the caller does not own the referenced transaction.
	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StorageError wraps a persistence failure. Op names the ledger operation
// ("fetching transactions", "creating transaction", ...).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }
