/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Product", 7)

	expected := "Product with Id 7 not found"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("Product", 3)

	expected := "Product with Id 3 already exists"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "entities",
			message:  "must not be nil",
			expected: `validation failed for field "entities": must not be nil`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("Storage.Provider", "no provider named %q (discovered: %s)", "Oracle", "Sqlite, PostgreSQL")

	expected := `storage configuration Storage.Provider: no provider named "Oracle" (discovered: Sqlite, PostgreSQL)`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsConfigError(err) {
		t.Error("IsConfigError should return true for ConfigError")
	}
}

func TestStorageErrorKinds(t *testing.T) {
	cause := fmt.Errorf("driver: pq: deadlock detected")

	tests := []struct {
		kind      Kind
		transient bool
		integrity bool
	}{
		{KindConnectivity, true, false},
		{KindTimeout, true, false},
		{KindDeadlock, true, false},
		{KindUniqueViolation, false, true},
		{KindForeignKeyViolation, false, true},
		{KindUnexpected, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := NewStorageError("save products", tt.kind, cause)

			if err.Error() != "save products: "+tt.kind.Message() {
				t.Errorf("Unexpected message %q", err.Error())
			}
			if IsTransient(err) != tt.transient {
				t.Errorf("IsTransient = %v, want %v", IsTransient(err), tt.transient)
			}
			if IsIntegrity(err) != tt.integrity {
				t.Errorf("IsIntegrity = %v, want %v", IsIntegrity(err), tt.integrity)
			}
			if !errors.Is(err, ErrStorage) {
				t.Error("StorageError should match ErrStorage")
			}
			if errors.Is(err, cause) {
				t.Error("StorageError must not expose the backend cause through errors.Is")
			}
		})
	}
}

func TestStorageErrorContext(t *testing.T) {
	canceled := NewStorageError("load", KindUnexpected, fmt.Errorf("query: %w", context.Canceled))
	if KindOf(canceled) != KindCanceled {
		t.Errorf("Expected canceled kind, got %v", KindOf(canceled))
	}
	if !errors.Is(canceled, context.Canceled) {
		t.Error("canceled StorageError should match context.Canceled")
	}

	deadline := NewStorageError("load", KindConnectivity, context.DeadlineExceeded)
	if KindOf(deadline) != KindTimeout {
		t.Errorf("Expected timeout kind, got %v", KindOf(deadline))
	}
	if !errors.Is(deadline, context.DeadlineExceeded) {
		t.Error("timeout StorageError should match context.DeadlineExceeded")
	}
}

func TestStorageErrorWrapsOnce(t *testing.T) {
	inner := NewStorageError("save", KindDeadlock, fmt.Errorf("boom"))
	outer := NewStorageError("save again", KindUnexpected, fmt.Errorf("wrapped: %w", inner))

	if outer != inner {
		t.Fatalf("Expected the original StorageError to be returned, got %v", outer)
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewNotFoundError("Product", 123)
	wrapped := fmt.Errorf("repository operation failed: %w", original)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrConfiguration,
		ErrTransient,
		ErrIntegrity,
		ErrStorage,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
