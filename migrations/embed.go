// Package migrations embeds the SQL migrations that create the accounts schema.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
