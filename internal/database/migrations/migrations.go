// Package migrations embeds the versioned SQL applied to the store at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
