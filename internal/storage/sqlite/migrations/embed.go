// Package migrations holds the SQLite schema for the sqlite storage backend.
package migrations

import "embed"

// FS contains the SQL migration files, applied in filename order
//
//go:embed *.sql
var FS embed.FS
