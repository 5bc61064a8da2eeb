// Package migrations embeds the SQL migrations of the addresses schema.
package migrations

import "embed"

//go:embed *.sql
var MigrationsFS embed.FS
