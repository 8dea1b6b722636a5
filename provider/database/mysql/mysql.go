/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mysql registers the MySql database provider.
package mysql

import (
	stderrors "errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/sqldb"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/registry"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.database.mysql"

// MySQL server and client error numbers
const (
	errDeadlock          = 1213
	errLockWaitTimeout   = 1205
	errDuplicateEntry    = 1062
	errRowIsReferenced   = 1451
	errNoReferencedRow   = 1452
	errTooManyConns      = 1040
	errConnectionRefused = 2002
	errHostUnreachable   = 2003
	errServerGone        = 2006
	errLostConnection    = 2013
)

// Registrar is the MySql provider registrar
type Registrar struct{}

// ProviderName returns "MySql"
func (Registrar) ProviderName() string { return "MySql" }

// Configure normalizes conn and opens a go-sql-driver/mysql pool
func (Registrar) Configure(b *dbstore.OptionsBuilder, conn string) error {
	dsn, location, err := Normalize(conn)
	if err != nil {
		return err
	}
	backend, err := sqldb.Open(sqldb.Config{
		DriverName: "mysql",
		DSN:        dsn,
		Dialect:    sqldb.MySQL,
		Location:   location,
		Classify:   Classify,
		Logger:     b.Logger(),
	})
	if err != nil {
		return err
	}
	b.UseBackend(backend)
	return nil
}

// Normalize parses conn, enables parseTime and returns the rewritten DSN
// with a credential-free location.
func Normalize(conn string) (dsn, location string, err error) {
	cfg, err := mysql.ParseDSN(conn)
	if err != nil {
		return "", "", errors.NewConfigError("Storage.ConnectionString", "mysql connection string could not be parsed")
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), fmt.Sprintf("mysql://%s@%s/%s", cfg.User, cfg.Addr, cfg.DBName), nil
}

// Classify recognizes MySQL error numbers
func Classify(err error) (errors.Kind, bool) {
	if stderrors.Is(err, mysql.ErrInvalidConn) {
		return errors.KindConnectivity, true
	}
	var myErr *mysql.MySQLError
	if !stderrors.As(err, &myErr) {
		return errors.KindUnexpected, false
	}
	switch myErr.Number {
	case errDeadlock:
		return errors.KindDeadlock, true
	case errLockWaitTimeout:
		return errors.KindTimeout, true
	case errDuplicateEntry:
		return errors.KindUniqueViolation, true
	case errRowIsReferenced, errNoReferencedRow:
		return errors.KindForeignKeyViolation, true
	case errTooManyConns, errConnectionRefused, errHostUnreachable, errServerGone, errLostConnection:
		return errors.KindConnectivity, true
	}
	return errors.KindUnexpected, false
}

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
