// Package migrations embeds the storefront database schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
