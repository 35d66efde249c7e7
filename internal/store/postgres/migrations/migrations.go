// Package migrations embeds the goose SQL migrations for the durable store.
package migrations

import "embed"

// Migrations is handed to goose.SetBaseFS.
//
//go:embed *.sql
var Migrations embed.FS
