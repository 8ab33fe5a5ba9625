// Package migrations embeds the registry's SQL migration files.
package migrations

import "embed"

// FS holds the SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
