/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlitenative registers the SqliteNative database provider, a
// cgo-free SQLite backed by modernc.org/sqlite.
package sqlitenative

import (
	stderrors "errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/sqldb"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/registry"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.database.sqlitenative"

// Registrar is the SqliteNative provider registrar
type Registrar struct{}

// ProviderName returns "SqliteNative"
func (Registrar) ProviderName() string { return "SqliteNative" }

// Configure opens conn with the "sqlite" driver. In-memory databases are
// restricted to one connection so every statement sees the same schema.
func (Registrar) Configure(b *dbstore.OptionsBuilder, conn string) error {
	location, _, _ := strings.Cut(conn, "?")
	cfg := sqldb.Config{
		DriverName: "sqlite",
		DSN:        conn,
		Dialect:    sqldb.SQLite,
		Location:   location,
		Classify:   Classify,
		Logger:     b.Logger(),
	}
	if conn == ":memory:" || strings.Contains(conn, "mode=memory") || strings.HasPrefix(conn, "file::memory:") {
		cfg.MaxOpenConns = 1
	}
	backend, err := sqldb.Open(cfg)
	if err != nil {
		return err
	}
	b.UseBackend(backend)
	return nil
}

// Classify recognizes SQLite result codes. The driver reports extended codes;
// the low byte is the primary code.
func Classify(err error) (errors.Kind, bool) {
	var sqliteErr *sqlite.Error
	if !stderrors.As(err, &sqliteErr) {
		return errors.KindUnexpected, false
	}
	return classifyCode(sqliteErr.Code())
}

func classifyCode(code int) (errors.Kind, bool) {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return errors.KindUniqueViolation, true
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return errors.KindForeignKeyViolation, true
	}
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY:
		return errors.KindTimeout, true
	case sqlite3.SQLITE_LOCKED:
		return errors.KindDeadlock, true
	case sqlite3.SQLITE_CANTOPEN:
		return errors.KindConnectivity, true
	}
	return errors.KindUnexpected, false
}

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
