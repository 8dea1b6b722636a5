/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dbstore

import (
	"context"
	"io/fs"

	"go.uber.org/zap"

	"github.com/suparena/persistence/errors"
)

// Backend is a database context factory. It knows nothing about entity
// types; tables and rows are described by Table.
type Backend interface {
	// ReadAll returns every row of table
	ReadAll(ctx context.Context, table *Table) ([]Row, error)

	// ReplaceAll deletes every row of table and inserts rows as one unit
	ReplaceAll(ctx context.Context, table *Table, rows []Row) error

	// Migrate brings the schema up to date. migrations may be nil.
	Migrate(ctx context.Context, migrations fs.FS) error

	// Classify maps a backend error onto the storage error kinds
	Classify(err error) errors.Kind

	// Location names the backing database with credentials removed
	Location() string

	// Close releases connections held by the backend
	Close() error
}

// ProviderRegistrar configures one database backend.
type ProviderRegistrar interface {
	// ProviderName is matched case-insensitively against the configured provider
	ProviderName() string

	// Configure applies connection wiring for connString to b
	Configure(b *OptionsBuilder, connString string) error
}

// ConfigureFunc is handed to a ContextRegistrar; it fills an OptionsBuilder
// on behalf of the selected ProviderRegistrar.
type ConfigureFunc func(b *OptionsBuilder) error

// ContextRegistrar binds the database contexts of a business module. It is
// the only place concrete entity types meet the database layer.
type ContextRegistrar interface {
	ContextName() string
	RegisterDbContext(b *Binder, configure ConfigureFunc) error
}

// Options is the result of building an OptionsBuilder
type Options struct {
	Backend     Backend
	AutoMigrate bool
}

// OptionsBuilder collects backend wiring from a provider registrar.
type OptionsBuilder struct {
	backend     Backend
	autoMigrate bool
	logger      *zap.Logger
}

// NewOptionsBuilder creates a builder with auto migration enabled
func NewOptionsBuilder(logger *zap.Logger) *OptionsBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptionsBuilder{autoMigrate: true, logger: logger}
}

// UseBackend sets the backend. A later call replaces an earlier one.
func (b *OptionsBuilder) UseBackend(backend Backend) *OptionsBuilder {
	b.backend = backend
	return b
}

// WithAutoMigrate toggles schema migration on selection
func (b *OptionsBuilder) WithAutoMigrate(enabled bool) *OptionsBuilder {
	b.autoMigrate = enabled
	return b
}

// WithLogger sets the logger handed to backends
func (b *OptionsBuilder) WithLogger(logger *zap.Logger) *OptionsBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Logger returns the logger providers should hand to their backends
func (b *OptionsBuilder) Logger() *zap.Logger {
	return b.logger
}

// Build validates the builder
func (b *OptionsBuilder) Build() (Options, error) {
	if b.backend == nil {
		return Options{}, errors.NewConfigError("Storage.Provider", "provider did not configure a backend")
	}
	return Options{Backend: b.backend, AutoMigrate: b.autoMigrate}, nil
}

// Configure runs configure against a fresh builder and builds it.
func Configure(configure ConfigureFunc, logger *zap.Logger) (Options, error) {
	b := NewOptionsBuilder(logger)
	if configure != nil {
		if err := configure(b); err != nil {
			return Options{}, err
		}
	}
	return b.Build()
}
