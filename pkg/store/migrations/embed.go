// Package migrations embeds SQL migrations for the SQLite entry store.
package migrations

import "embed"

// FS holds the *.up.sql files. "{{table}}" is replaced with the configured
// table name before execution.
//
//go:embed *.sql
var FS embed.FS
