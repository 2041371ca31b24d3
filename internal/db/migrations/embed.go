// Package migrations embeds the schema for the local session database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
