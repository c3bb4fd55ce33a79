// Package migrations embeds the SQL migration files for the SQLite
// backend so they can be applied through the goose programmatic API at
// store open time, with no filesystem path or external tool needed.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
