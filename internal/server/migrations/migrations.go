// Package migrations embeds the goose SQL migrations for the server schema.
package migrations

import "embed"

// Migrations is the goose base filesystem; files live at its root.
//
//go:embed *.sql
var Migrations embed.FS
