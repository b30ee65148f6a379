// Package apperr defines the error taxonomy shared by the persistence layer,
// the repositories and the fulfillment workflow.
//
// Validation and not-found errors are expected business outcomes and are
// handled by the immediate caller. Persistence and consistency errors are
// operational failures: they are logged at the workflow or datastore boundary
// and always returned, never replaced by a zero value.
package apperr

import (
	"errors"
	"fmt"
)

// ErrInsufficientStock is returned when an order asks for more units than the
// product has in stock at the moment the order is placed.
var ErrInsufficientStock = errors.New("not enough stock")

// ValidationError reports a violated business rule.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Message)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(entity, field, format string, args ...any) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced id that is absent from its table.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("the %s with id = %d was not found", e.Entity, e.ID)
}

// PersistenceError wraps a connectivity or constraint failure at the storage layer.
type PersistenceError struct {
	Op         string
	Table      string
	Constraint bool
	Err        error
}

func (e *PersistenceError) Error() string {
	kind := "persistence"
	if e.Constraint {
		kind = "constraint"
	}
	return fmt.Sprintf("%s failure during %s on %s: %v", kind, e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConsistencyError reports a fulfillment step that failed after an earlier
// step had already written. Compensated tells whether the earlier writes were
// undone (by rollback or compensating actions).
type ConsistencyError struct {
	Step            string
	Compensated     bool
	Err             error
	CompensationErr error
}

func (e *ConsistencyError) Error() string {
	if e.Compensated {
		return fmt.Sprintf("step %q failed, earlier steps were undone: %v", e.Step, e.Err)
	}
	if e.CompensationErr != nil {
		return fmt.Sprintf("step %q failed and compensation failed (%v): %v", e.Step, e.CompensationErr, e.Err)
	}
	return fmt.Sprintf("step %q failed, earlier steps remain committed: %v", e.Step, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

// IsConsistency reports whether err carries a ConsistencyError.
func IsConsistency(err error) bool {
	var target *ConsistencyError
	return errors.As(err, &target)
}

// IsBusiness reports whether err is an expected business outcome rather than
// an operational failure.
func IsBusiness(err error) bool {
	return IsValidation(err) || IsNotFound(err) || errors.Is(err, ErrInsufficientStock)
}
