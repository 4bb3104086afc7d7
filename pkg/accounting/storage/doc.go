// Package storage provides accounting.Store backends.
//
// MemoryStore keeps everything in maps behind one lock and is used by tests
// and dry experiments. SQLStore speaks to SQLite (pure Go "sqlite" or cgo
// "sqlite3"), PostgreSQL ("postgres", via pgx) or MySQL ("mysql") through
// database/sql and ships its schema as embedded goose migrations.
//
// Both backends also implement Fixtures, which tests use to seed and
// inspect records.
package storage
