/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides mock implementations of the DataStore interface for testing
package mock

import (
	"context"
	"sync"

	"github.com/suparena/persistence/errors"
)

// DataStore is a mock implementation of datastore.DataStore[T] for testing
type DataStore[T any] struct {
	mu        sync.RWMutex
	data      []T
	loadFunc  func(ctx context.Context) ([]T, error)
	saveFunc  func(ctx context.Context, entities []T) (int, error)
	loadError error
	saveError error
	loads     int
	saves     int
}

// New creates a new mock DataStore holding seed
func New[T any](seed ...T) *DataStore[T] {
	return &DataStore[T]{
		data: append([]T{}, seed...),
	}
}

// WithLoadFunc sets a custom load function for testing
func (m *DataStore[T]) WithLoadFunc(f func(ctx context.Context) ([]T, error)) *DataStore[T] {
	m.loadFunc = f
	return m
}

// WithSaveFunc sets a custom save function for testing
func (m *DataStore[T]) WithSaveFunc(f func(ctx context.Context, entities []T) (int, error)) *DataStore[T] {
	m.saveFunc = f
	return m
}

// WithLoadError makes Load operations return an error
func (m *DataStore[T]) WithLoadError(err error) *DataStore[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadError = err
	return m
}

// WithSaveError makes Save operations return an error
func (m *DataStore[T]) WithSaveError(err error) *DataStore[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
	return m
}

// Location identifies the mock in active-source descriptions
func (m *DataStore[T]) Location() string {
	return "memory"
}

// Load returns a copy of the stored collection
func (m *DataStore[T]) Load(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	m.loads++
	loadErr := m.loadError
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.NewStorageError("load", errors.KindCanceled, err)
	}
	if loadErr != nil {
		return nil, loadErr
	}
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]T{}, m.data...), nil
}

// Save replaces the stored collection
func (m *DataStore[T]) Save(ctx context.Context, entities []T) (int, error) {
	if entities == nil {
		return 0, errors.NewValidationError("entities", "collection must not be nil")
	}

	m.mu.Lock()
	m.saves++
	saveErr := m.saveError
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, errors.NewStorageError("save", errors.KindCanceled, err)
	}
	if saveErr != nil {
		return 0, saveErr
	}
	if m.saveFunc != nil {
		return m.saveFunc(ctx, entities)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]T{}, entities...)
	return len(entities), nil
}

// Helper methods for testing

// SetData directly replaces the stored collection (for testing)
func (m *DataStore[T]) SetData(data []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]T{}, data...)
}

// GetData returns a copy of the stored collection (for testing)
func (m *DataStore[T]) GetData() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]T{}, m.data...)
}

// Count returns the number of stored entities
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// LoadCalls returns how many times Load was called
func (m *DataStore[T]) LoadCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

// SaveCalls returns how many times Save was called with a non-nil collection
func (m *DataStore[T]) SaveCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Clear removes all data
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
}
