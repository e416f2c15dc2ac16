// Package migrations ships the SQLite vector index schema with the binary.
package migrations

import "embed"

// FS holds the numbered NNN_name.up.sql and .down.sql scripts. Only up
// scripts are applied automatically.
//
//go:embed *.sql
var FS embed.FS
