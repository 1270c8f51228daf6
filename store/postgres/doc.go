// Package postgres provides Postgres backed implementations of
// tokenguard.UserProvider and denylist.Store on a pgx pool, plus the
// embedded goose migrations that create their tables.
package postgres
