/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package postgres registers the PostgreSQL database provider over the pgx
// database/sql driver.
package postgres

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/sqldb"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/registry"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.database.postgres"

// SQLSTATE codes
const (
	deadlockDetected     = "40P01"
	serializationFailure = "40001"
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	queryCanceled        = "57014"
	lockNotAvailable     = "55P03"
	tooManyConnections   = "53300"
	adminShutdown        = "57P01"
	cannotConnectNow     = "57P03"
)

// Registrar is the PostgreSQL provider registrar
type Registrar struct{}

// ProviderName returns "PostgreSQL"
func (Registrar) ProviderName() string { return "PostgreSQL" }

// Configure validates conn with pgconn and opens a pgx pool
func (Registrar) Configure(b *dbstore.OptionsBuilder, conn string) error {
	location, err := Location(conn)
	if err != nil {
		return err
	}
	backend, err := sqldb.Open(sqldb.Config{
		DriverName: "pgx",
		DSN:        conn,
		Dialect:    sqldb.Postgres,
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

// Location parses conn and describes it as postgres://user@host:port/database
func Location(conn string) (string, error) {
	cfg, err := pgconn.ParseConfig(conn)
	if err != nil {
		// pgconn errors echo the connection string
		return "", errors.NewConfigError("Storage.ConnectionString", "postgres connection string could not be parsed")
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Database), nil
}

// Classify recognizes PostgreSQL SQLSTATE codes
func Classify(err error) (errors.Kind, bool) {
	if pgconn.Timeout(err) {
		return errors.KindTimeout, true
	}
	var connectErr *pgconn.ConnectError
	if stderrors.As(err, &connectErr) {
		return errors.KindConnectivity, true
	}

	var pgErr *pgconn.PgError
	if !stderrors.As(err, &pgErr) {
		return errors.KindUnexpected, false
	}
	switch pgErr.Code {
	case deadlockDetected, serializationFailure:
		return errors.KindDeadlock, true
	case uniqueViolation:
		return errors.KindUniqueViolation, true
	case foreignKeyViolation:
		return errors.KindForeignKeyViolation, true
	case queryCanceled, lockNotAvailable:
		return errors.KindTimeout, true
	case tooManyConnections, adminShutdown, cannotConnectNow:
		return errors.KindConnectivity, true
	}
	if strings.HasPrefix(pgErr.Code, "08") {
		return errors.KindConnectivity, true
	}
	return errors.KindUnexpected, false
}

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
