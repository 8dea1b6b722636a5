/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"context"
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to add an entity whose Id is taken
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when argument validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration is returned when storage wiring cannot be resolved at startup
	ErrConfiguration = errors.New("invalid storage configuration")

	// ErrTransient marks backend failures that may succeed when retried unchanged
	ErrTransient = errors.New("transient storage failure")

	// ErrIntegrity marks backend failures that require the caller to change the data
	ErrIntegrity = errors.New("storage integrity violation")

	// ErrStorage matches every StorageError regardless of kind
	ErrStorage = errors.New("storage failure")
)

// Kind classifies a backend failure.
type Kind int

const (
	KindUnexpected Kind = iota
	KindConnectivity
	KindTimeout
	KindDeadlock
	KindUniqueViolation
	KindForeignKeyViolation
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnexpected:          "unexpected",
	KindConnectivity:        "connectivity",
	KindTimeout:             "timeout",
	KindDeadlock:            "deadlock",
	KindUniqueViolation:     "unique_violation",
	KindForeignKeyViolation: "foreign_key_violation",
	KindCanceled:            "canceled",
}

var kindMessages = map[Kind]string{
	KindUnexpected:          "unexpected data store failure",
	KindConnectivity:        "unable to reach the data store; check connectivity and try again",
	KindTimeout:             "the data store did not respond in time; try again",
	KindDeadlock:            "the operation was chosen as a deadlock victim; try again",
	KindUniqueViolation:     "the data conflicts with an existing record (duplicate key); change the data before saving",
	KindForeignKeyViolation: "the data references a missing or protected record; change the data before saving",
	KindCanceled:            "the operation was canceled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Message returns the human-readable message shown for the kind.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[KindUnexpected]
}

// Retryable reports whether retrying the whole operation unchanged may succeed.
func (k Kind) Retryable() bool {
	switch k {
	case KindConnectivity, KindTimeout, KindDeadlock:
		return true
	default:
		return false
	}
}

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with Id %d not found", e.Type, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	ID   int
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with Id %d already exists", e.Type, e.ID)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigError is a fatal wiring failure: unknown provider, missing connection
// string or missing database context.
type ConfigError struct {
	Setting string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("storage configuration %s: %s", e.Setting, e.Message)
	}
	return fmt.Sprintf("storage configuration: %s", e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// StorageError is the single error shape that crosses the Data Store boundary.
// The backend cause is kept for logging through Cause but is not unwrapped,
// except for context cancellation and deadlines.
type StorageError struct {
	Op   string
	Kind Kind
	err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Kind.Message())
}

func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorage:
		return true
	case ErrTransient:
		return e.Kind.Retryable()
	case ErrIntegrity:
		return e.Kind == KindUniqueViolation || e.Kind == KindForeignKeyViolation
	}
	return false
}

// Unwrap exposes context errors only so callers can test for cancellation.
func (e *StorageError) Unwrap() error {
	if errors.Is(e.err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(e.err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return nil
}

// Cause returns the original backend error for diagnostics.
func (e *StorageError) Cause() error {
	return e.err
}

// Retryable reports whether the caller may retry the operation unchanged.
func (e *StorageError) Retryable() bool {
	return e.Kind.Retryable()
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType string, id int) error {
	return &NotFoundError{Type: entityType, ID: id}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType string, id int) error {
	return &AlreadyExistsError{Type: entityType, ID: id}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigError creates a new ConfigError
func NewConfigError(setting, format string, args ...any) error {
	return &ConfigError{Setting: setting, Message: fmt.Sprintf(format, args...)}
}

// NewStorageError wraps a backend failure. Context errors override the given kind.
// An error that is already a StorageError is returned unchanged so wrapping happens once.
func NewStorageError(op string, kind Kind, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	}
	return &StorageError{Op: op, Kind: kind, err: err}
}

// KindOf returns the kind of a StorageError in err's chain, or KindUnexpected.
func KindOf(err error) Kind {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnexpected
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error is a fatal configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsTransient checks if an error is a retry-appropriate storage error
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsIntegrity checks if an error is a non-retryable integrity violation
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}
