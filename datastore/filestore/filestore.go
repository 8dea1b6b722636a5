/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filestore

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/serializer"
)

const defaultPerm fs.FileMode = 0o644

// Store is a file-backed datastore.DataStore
type Store[T any] struct {
	path       string
	serializer *serializer.Serializer[T]
	sem        *semaphore.Weighted
	perm       fs.FileMode
	logger     *zap.Logger
}

// Option configures a Store
type Option func(*options)

type options struct {
	perm   fs.FileMode
	logger *zap.Logger
}

// WithLogger sets the logger used for load and save diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFileMode sets the permission bits of newly written files
func WithFileMode(perm fs.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// New creates a Store bound to path.
func New[T any](path string, s *serializer.Serializer[T], opts ...Option) *Store[T] {
	o := options{perm: defaultPerm, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		path:       path,
		serializer: s,
		sem:        semaphore.NewWeighted(1),
		perm:       o.perm,
		logger:     o.logger,
	}
}

// Location returns the file path
func (s *Store[T]) Location() string {
	return s.path
}

// Format returns the serializer format of the file
func (s *Store[T]) Format() string {
	return s.serializer.Format()
}

// Load reads and decodes the file. A missing file yields an empty collection.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.NewStorageError("load", errors.KindCanceled, err)
	}
	defer s.sem.Release(1)

	if err := ctx.Err(); err != nil {
		return nil, errors.NewStorageError("load", errors.KindCanceled, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("file not found, starting empty", zap.String("path", s.path))
			return []T{}, nil
		}
		s.logger.Error("failed to read file", zap.String("path", s.path), zap.Error(err))
		return nil, errors.NewStorageError("load", errors.KindUnexpected, err)
	}

	entities := s.serializer.Deserialize(data)
	s.logger.Debug("loaded entities", zap.String("path", s.path), zap.Int("count", len(entities)))
	return entities, nil
}

// Save overwrites the file with entities and returns how many were written.
func (s *Store[T]) Save(ctx context.Context, entities []T) (int, error) {
	if entities == nil {
		return 0, errors.NewValidationError("entities", "collection must not be nil")
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, errors.NewStorageError("save", errors.KindCanceled, err)
	}
	defer s.sem.Release(1)

	if err := ctx.Err(); err != nil {
		return 0, errors.NewStorageError("save", errors.KindCanceled, err)
	}

	data, err := s.serializer.Serialize(entities)
	if err != nil {
		s.logger.Error("failed to encode entities", zap.String("path", s.path), zap.Error(err))
		return 0, errors.NewStorageError("save", errors.KindUnexpected, err)
	}

	if err := s.writeAtomic(data); err != nil {
		s.logger.Error("failed to write file", zap.String("path", s.path), zap.Error(err))
		return 0, errors.NewStorageError("save", errors.KindUnexpected, err)
	}

	s.logger.Debug("saved entities", zap.String("path", s.path), zap.Int("count", len(entities)))
	return len(entities), nil
}

func (s *Store[T]) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return err
	}
	committed = true
	return nil
}
