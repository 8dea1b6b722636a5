/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqldb implements dbstore.Backend over database/sql.
//
// One Backend serves the SQL Server, SQLite, PostgreSQL and MySQL providers.
// Dialect covers placeholder syntax, identifier quoting and the goose
// migration dialect; the provider supplies the driver and its error
// classifier. Schema changes are goose migrations read from
// fs.Sub(migrations, dialect.MigrationDir).
package sqldb
