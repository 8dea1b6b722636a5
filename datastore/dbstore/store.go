/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dbstore

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/suparena/persistence/errors"
)

// Store is a database-backed datastore.DataStore.
type Store[T any] struct {
	dbctx  *Context[T]
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// StoreOption configures a Store
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to record backend failures
func WithLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// NewStore creates a Store over dbctx
func NewStore[T any](dbctx *Context[T], opts ...StoreOption) *Store[T] {
	o := storeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		dbctx:  dbctx,
		sem:    semaphore.NewWeighted(1),
		logger: o.logger.With(zap.String("table", dbctx.table.Name)),
	}
}

// Location returns the backend location
func (s *Store[T]) Location() string {
	return s.dbctx.backend.Location()
}

// Context returns the bound database context
func (s *Store[T]) Context() *Context[T] {
	return s.dbctx
}

// Load reads the whole table
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.NewStorageError("load", errors.KindCanceled, err)
	}
	defer s.sem.Release(1)

	entities, err := s.dbctx.All(ctx)
	if err != nil {
		return nil, s.wrap("load", err)
	}
	s.logger.Debug("loaded entities", zap.Int("count", len(entities)))
	return entities, nil
}

// Save replaces the whole table with entities in one transaction
func (s *Store[T]) Save(ctx context.Context, entities []T) (int, error) {
	if entities == nil {
		return 0, errors.NewValidationError("entities", "collection must not be nil")
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, errors.NewStorageError("save", errors.KindCanceled, err)
	}
	defer s.sem.Release(1)

	if err := s.dbctx.ReplaceAll(ctx, entities); err != nil {
		return 0, s.wrap("save", err)
	}
	s.logger.Debug("saved entities", zap.Int("count", len(entities)))
	return len(entities), nil
}

// Migrate applies the context migrations under the store's slot
func (s *Store[T]) Migrate(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return errors.NewStorageError("migrate", errors.KindCanceled, err)
	}
	defer s.sem.Release(1)

	if err := s.dbctx.Migrate(ctx); err != nil {
		return s.wrap("migrate", err)
	}
	return nil
}

func (s *Store[T]) wrap(op string, err error) error {
	kind := s.dbctx.backend.Classify(err)
	wrapped := errors.NewStorageError(op, kind, err)
	s.logger.Error("data store operation failed",
		zap.String("op", op),
		zap.Stringer("kind", errors.KindOf(wrapped)),
		zap.Error(err))
	return wrapped
}
