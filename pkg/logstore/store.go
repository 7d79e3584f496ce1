package logstore

import (
	"context"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// BatchInserter writes several records at once and sets their IDs.
type BatchInserter interface {
	InsertBatch(ctx context.Context, recs []*requestlog.Record) error
}

// Store is implemented by every backend and decorator in this package.
type Store interface {
	requestlog.Sink
	requestlog.Purger
	BatchInserter
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = (*Mongo)(nil)
	_ Store = (*OpenSearch)(nil)
	_ Store = (*Memory)(nil)
	_ Store = (*Async)(nil)
	_ Store = (*Breaker)(nil)
)
