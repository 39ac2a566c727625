// Package migrations embeds the goose SQL migrations for the delivery
// worker's cache database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
