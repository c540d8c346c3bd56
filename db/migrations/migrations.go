// Package migrations embeds the ordered schema history applied by
// postgres.RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
