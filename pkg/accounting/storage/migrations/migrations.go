// Package migrations embeds the goose SQL migrations for the accounting schema.
// The statements stick to types shared by SQLite, PostgreSQL and MySQL; all
// timestamps are Unix seconds.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
