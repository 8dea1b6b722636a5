/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlserver registers the SqlServer database provider. Connection
// strings may use either the sqlserver:// URL form or ADO key/value pairs.
package sqlserver

import (
	stderrors "errors"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/sqldb"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/registry"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.database.sqlserver"

// SQL Server error numbers
const (
	errDeadlockVictim    = 1205
	errLockTimeout       = 1222
	errUniqueConstraint  = 2627
	errUniqueIndex       = 2601
	errForeignKey        = 547
	errLoginFailed       = 18456
	errDatabaseOffline   = 4060
	errServerUnavailable = 40613
)

// Registrar is the SqlServer provider registrar
type Registrar struct{}

// ProviderName returns "SqlServer"
func (Registrar) ProviderName() string { return "SqlServer" }

// Configure opens a go-mssqldb pool for conn
func (Registrar) Configure(b *dbstore.OptionsBuilder, conn string) error {
	backend, err := sqldb.Open(sqldb.Config{
		DriverName: "sqlserver",
		DSN:        conn,
		Dialect:    sqldb.SQLServer,
		Location:   sqldb.RedactDSN(conn),
		Classify:   Classify,
		Logger:     b.Logger(),
	})
	if err != nil {
		return err
	}
	b.UseBackend(backend)
	return nil
}

// Classify recognizes SQL Server error numbers
func Classify(err error) (errors.Kind, bool) {
	var sqlErr mssql.Error
	if !stderrors.As(err, &sqlErr) {
		return errors.KindUnexpected, false
	}
	switch sqlErr.Number {
	case errDeadlockVictim:
		return errors.KindDeadlock, true
	case errLockTimeout:
		return errors.KindTimeout, true
	case errUniqueConstraint, errUniqueIndex:
		return errors.KindUniqueViolation, true
	case errForeignKey:
		return errors.KindForeignKeyViolation, true
	case errLoginFailed, errDatabaseOffline, errServerUnavailable:
		return errors.KindConnectivity, true
	}
	return errors.KindUnexpected, false
}

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
