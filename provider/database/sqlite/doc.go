/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlite registers the Sqlite database provider backed by
// github.com/mattn/go-sqlite3. The connection string is a file path or a
// file: URI; ":memory:" opens a private in-memory database on a single
// connection.
package sqlite

import "strings"

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.database.sqlite"

// IsMemory reports whether conn names an in-memory database
func IsMemory(conn string) bool {
	return conn == ":memory:" || strings.Contains(conn, "mode=memory") || strings.HasPrefix(conn, "file::memory:")
}

// Location returns conn without its query parameters
func Location(conn string) string {
	path, _, _ := strings.Cut(conn, "?")
	return path
}
