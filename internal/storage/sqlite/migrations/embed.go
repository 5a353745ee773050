// Package migrations embeds the SQL migrations for the document database.
package migrations

import "embed"

// FS holds the migration files.
//
//go:embed *.sql
var FS embed.FS
