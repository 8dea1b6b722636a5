/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

//go:build cgo

package sqlite

import (
	stderrors "errors"

	"github.com/mattn/go-sqlite3"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/sqldb"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/registry"
)

// Registrar is the Sqlite provider registrar
type Registrar struct{}

// ProviderName returns "Sqlite"
func (Registrar) ProviderName() string { return "Sqlite" }

// Configure opens a mattn/go-sqlite3 database at conn
func (Registrar) Configure(b *dbstore.OptionsBuilder, conn string) error {
	cfg := sqldb.Config{
		DriverName: "sqlite3",
		DSN:        conn,
		Dialect:    sqldb.SQLite,
		Location:   Location(conn),
		Classify:   Classify,
		Logger:     b.Logger(),
	}
	if IsMemory(conn) {
		cfg.MaxOpenConns = 1
	}
	backend, err := sqldb.Open(cfg)
	if err != nil {
		return err
	}
	b.UseBackend(backend)
	return nil
}

// Classify recognizes SQLite result codes
func Classify(err error) (errors.Kind, bool) {
	var sqliteErr sqlite3.Error
	if !stderrors.As(err, &sqliteErr) {
		return errors.KindUnexpected, false
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return errors.KindUniqueViolation, true
	case sqlite3.ErrConstraintForeignKey:
		return errors.KindForeignKeyViolation, true
	}
	switch sqliteErr.Code {
	case sqlite3.ErrBusy:
		return errors.KindTimeout, true
	case sqlite3.ErrLocked:
		return errors.KindDeadlock, true
	case sqlite3.ErrCantOpen:
		return errors.KindConnectivity, true
	}
	return errors.KindUnexpected, false
}

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
