// Package migrations embeds the numbered SQL files applied by "clinic-server migrate up".
package migrations

import "embed"

// FS holds every *.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
