/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dbstore

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/suparena/persistence/datastore"
)

// Context binds a Backend and a Table to the entity type T.
type Context[T any] struct {
	backend     Backend
	table       *Table
	migrations  fs.FS
	autoMigrate bool
}

// NewContext creates a Context. migrations may be nil.
func NewContext[T any](opts Options, table *Table, migrations fs.FS) *Context[T] {
	return &Context[T]{
		backend:     opts.Backend,
		table:       table,
		migrations:  migrations,
		autoMigrate: opts.AutoMigrate,
	}
}

// Backend returns the underlying backend
func (c *Context[T]) Backend() Backend {
	return c.backend
}

// Table returns the table layout
func (c *Context[T]) Table() *Table {
	return c.table
}

// AutoMigrate reports whether the schema should be migrated on selection
func (c *Context[T]) AutoMigrate() bool {
	return c.autoMigrate
}

// Migrate applies the bound migrations
func (c *Context[T]) Migrate(ctx context.Context) error {
	return c.backend.Migrate(ctx, c.migrations)
}

// All reads every row and converts it to T
func (c *Context[T]) All(ctx context.Context) ([]T, error) {
	rows, err := c.backend.ReadAll(ctx, c.table)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		e, err := entity[T](c.table, row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ReplaceAll converts entities to rows and replaces the table contents
func (c *Context[T]) ReplaceAll(ctx context.Context, entities []T) error {
	rows := make([]Row, 0, len(entities))
	for i, e := range entities {
		if datastore.IsNil(e) {
			return fmt.Errorf("dbstore: entity %d is nil", i)
		}
		row, err := c.table.RowOf(e)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return c.backend.ReplaceAll(ctx, c.table, rows)
}
