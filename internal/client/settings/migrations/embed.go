// Package migrations embeds the sqlite schema migrations for the settings
// store, applied with goose on startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
