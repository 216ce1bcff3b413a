// Package migrations holds the SQLite roster schema.
package migrations

import "embed"

// FS contains the golang-migrate files for the SQLite roster store.
//
//go:embed *.sql
var FS embed.FS
