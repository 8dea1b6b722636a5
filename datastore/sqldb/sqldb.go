/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqldb

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/errors"
)

// ClassifyFunc maps a driver error to a storage error kind. It returns
// false when the error is not recognized.
type ClassifyFunc func(err error) (errors.Kind, bool)

// Config describes how to open a database/sql backend
type Config struct {
	DriverName string
	DSN        string
	Dialect    Dialect

	// Location is shown to users; it must not contain credentials
	Location string

	// Classify recognizes driver-specific errors
	Classify ClassifyFunc

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	Logger *zap.Logger
}

// Backend is a dbstore.Backend over database/sql
type Backend struct {
	db       *sql.DB
	dialect  Dialect
	location string
	classify ClassifyFunc
	logger   *zap.Logger
}

var _ dbstore.Backend = (*Backend)(nil)

// Open opens the database without connecting; the first operation dials.
func Open(cfg Config) (*Backend, error) {
	db, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Dialect.Name, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return New(db, cfg), nil
}

// New wraps an existing handle. The backend takes ownership of db.
func New(db *sql.DB, cfg Config) *Backend {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		db:       db,
		dialect:  cfg.Dialect,
		location: cfg.Location,
		classify: cfg.Classify,
		logger:   logger.With(zap.String("dialect", cfg.Dialect.Name)),
	}
}

// DB returns the underlying handle
func (b *Backend) DB() *sql.DB {
	return b.db
}

// Dialect returns the SQL dialect
func (b *Backend) Dialect() Dialect {
	return b.dialect
}

// Location returns the redacted location
func (b *Backend) Location() string {
	return b.location
}

// Close closes the pool
func (b *Backend) Close() error {
	return b.db.Close()
}

// Ping verifies the database is reachable
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// ReadAll selects every row ordered by key
func (b *Backend) ReadAll(ctx context.Context, table *dbstore.Table) ([]dbstore.Row, error) {
	query := b.dialect.selectAll(table.Name, table.ColumnNames(), table.KeyColumn().Name)

	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []dbstore.Row
	for rows.Next() {
		row, err := table.ScanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if result == nil {
		result = []dbstore.Row{}
	}
	return result, nil
}

// ReplaceAll deletes every row and inserts rows inside one transaction
func (b *Backend) ReplaceAll(ctx context.Context, table *dbstore.Table, rows []dbstore.Row) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
				b.logger.Warn("rollback failed", zap.String("table", table.Name), zap.Error(rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, b.dialect.deleteAll(table.Name)); err != nil {
		return err
	}

	if len(rows) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, b.dialect.insert(table.Name, table.ColumnNames()))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			if _, err = stmt.ExecContext(ctx, row...); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	b.logger.Debug("replaced table", zap.String("table", table.Name), zap.Int("rows", len(rows)))
	return nil
}

// Migrate applies the scripts under the dialect's directory of migrations.
// A nil FS or a directory without scripts is a no-op.
func (b *Backend) Migrate(ctx context.Context, migrations fs.FS) error {
	if migrations == nil {
		return nil
	}
	dir, err := fs.Sub(migrations, b.dialect.MigrationDir)
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", b.dialect.Name, err)
	}

	provider, err := goose.NewProvider(b.dialect.Goose, b.db, dir)
	if err != nil {
		if stderrors.Is(err, goose.ErrNoMigrations) {
			b.logger.Debug("no migrations to apply")
			return nil
		}
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		b.logger.Info("applied migration",
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration))
	}
	return nil
}

// Classify maps err onto a storage kind: driver rules first, then the
// conditions common to every backend.
func (b *Backend) Classify(err error) errors.Kind {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return dbstore.ClassifyNetwork(err)
	}
	if b.classify != nil {
		if kind, ok := b.classify(err); ok {
			return kind
		}
	}
	return dbstore.ClassifyNetwork(err)
}
