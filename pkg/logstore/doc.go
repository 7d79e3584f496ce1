// Package logstore implements requestlog.Sink on several backends.
//
// Backends:
//
//   - Postgres: pgx pool, schema from PostgresMigrations (goose).
//   - SQLite: database/sql with modernc.org/sqlite, schema from SQLiteMigrations.
//   - Mongo: one collection plus a counters collection for integer IDs.
//   - OpenSearch: one index with a strict keyword mapping.
//   - Memory: xsync map, for tests and trial runs.
//
// Every backend also implements requestlog.Purger and BatchInserter, which
// together form the Store interface.
//
// Two decorators wrap any Store. Breaker (sony/gobreaker) fails fast while
// the backend is unhealthy. Async queues inserts in a bounded buffer and
// writes them in batches from a background worker, dropping records when the
// buffer is full:
//
//	store := logstore.NewAsync(
//		logstore.NewBreaker(logstore.NewSQLite(db), logstore.BreakerSettings{Name: "sqlite"}),
//		logstore.AsyncOptions{BatchSize: 50},
//	)
//	defer store.Close(ctx)
//
// Search matches a case-insensitive substring against
// requestlog.SearchColumns; ordering is limited to requestlog.SortableColumns.
package logstore
