/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package serializer

import (
	"bytes"

	"go.uber.org/zap"
)

// Codec encodes a slice of entities and decodes into a pointer to a slice.
type Codec interface {
	// Format returns the codec format identifier
	Format() string

	// Marshal encodes items, which must be a slice.
	Marshal(items any) ([]byte, error)

	// Unmarshal decodes data into out, which must be a pointer to a slice.
	Unmarshal(data []byte, out any) error
}

// Serializer is a typed view over a Codec.
type Serializer[T any] struct {
	codec  Codec
	logger *zap.Logger
}

// Option configures a Serializer
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger reports discarded (malformed) input through logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Serializer for T backed by codec.
func New[T any](codec Codec, opts ...Option) *Serializer[T] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Serializer[T]{codec: codec, logger: o.logger}
}

// Format returns the underlying codec format
func (s *Serializer[T]) Format() string {
	return s.codec.Format()
}

// Serialize encodes entities. A nil slice encodes as an empty collection.
func (s *Serializer[T]) Serialize(entities []T) ([]byte, error) {
	if entities == nil {
		entities = []T{}
	}
	return s.codec.Marshal(entities)
}

// Deserialize decodes data. Empty, whitespace-only and malformed input all
// yield an empty slice so that a corrupt file never aborts the caller.
func (s *Serializer[T]) Deserialize(data []byte) []T {
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}
	}

	var out []T
	if err := s.codec.Unmarshal(data, &out); err != nil {
		s.logger.Warn("discarding malformed input",
			zap.String("format", s.codec.Format()),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}
