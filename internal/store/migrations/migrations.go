// Package migrations embeds the SQL schema migrations applied by goose when
// the local database is opened.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
