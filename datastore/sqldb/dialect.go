/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqldb

import (
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	// Name identifies the dialect in logs
	Name string

	// MigrationDir is the directory inside a migrations FS holding this dialect's scripts
	MigrationDir string

	// Goose is the migration dialect
	Goose goose.Dialect

	placeholder func(n int) string
	quote       func(ident string) string
}

var (
	Postgres = Dialect{
		Name:         "postgres",
		MigrationDir: "postgres",
		Goose:        goose.DialectPostgres,
		placeholder:  func(n int) string { return "$" + strconv.Itoa(n) },
		quote:        quoteWith(`"`, `"`),
	}

	MySQL = Dialect{
		Name:         "mysql",
		MigrationDir: "mysql",
		Goose:        goose.DialectMySQL,
		placeholder:  func(int) string { return "?" },
		quote:        quoteWith("`", "`"),
	}

	SQLServer = Dialect{
		Name:         "sqlserver",
		MigrationDir: "mssql",
		Goose:        goose.DialectMSSQL,
		placeholder:  func(n int) string { return "@p" + strconv.Itoa(n) },
		quote:        quoteWith("[", "]"),
	}

	SQLite = Dialect{
		Name:         "sqlite3",
		MigrationDir: "sqlite3",
		Goose:        goose.DialectSQLite3,
		placeholder:  func(int) string { return "?" },
		quote:        quoteWith(`"`, `"`),
	}
)

func quoteWith(open, closing string) func(string) string {
	return func(ident string) string {
		return open + strings.ReplaceAll(ident, closing, closing+closing) + closing
	}
}

// Placeholder returns the bind parameter for the n-th (1-based) argument
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

// Quote quotes an identifier
func (d Dialect) Quote(ident string) string {
	return d.quote(ident)
}

func (d Dialect) selectAll(table string, columns []string, key string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	return "SELECT " + strings.Join(quoted, ", ") +
		" FROM " + d.Quote(table) +
		" ORDER BY " + d.Quote(key)
}

func (d Dialect) deleteAll(table string) string {
	return "DELETE FROM " + d.Quote(table)
}

func (d Dialect) insert(table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
		params[i] = d.Placeholder(i + 1)
	}
	return "INSERT INTO " + d.Quote(table) +
		" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(params, ", ") + ")"
}
