// Package sqlite opens a single-file SQLite database through the pure-Go
// modernc.org/sqlite driver and applies goose migrations to it. It backs the
// request log when no external database is configured.
package sqlite
