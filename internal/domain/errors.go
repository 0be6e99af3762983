package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("customer not found")
	ErrConcurrentUpdate = errors.New("customer was modified concurrently")
)

// ValidationError is returned synchronously for bad caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError wraps a storage failure with the operation that caused it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConsistencyViolation means the stored balance no longer matches the ledger.
// Writes that would build on such a balance are rejected.
type ConsistencyViolation struct {
	CustomerID string
	Expected   float64
	Actual     float64
}

func (e *ConsistencyViolation) Error() string {
	return fmt.Sprintf("ledger inconsistency for customer %s: ledger implies %.2f, balance is %.2f",
		e.CustomerID, e.Expected, e.Actual)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
