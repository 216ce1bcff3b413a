// Package migrations holds the PostgreSQL roster schema.
package migrations

import "embed"

// FS contains the golang-migrate files for the PostgreSQL roster store.
//
//go:embed *.sql
var FS embed.FS
