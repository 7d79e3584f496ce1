package logstore

import "embed"

// Migrations holds the goose migrations for the SQL backends.
//
//go:embed migrations
var Migrations embed.FS

// Migration directories inside Migrations.
const (
	PostgresMigrations = "migrations/postgres"
	SQLiteMigrations   = "migrations/sqlite"
)
