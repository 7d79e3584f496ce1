package requestlog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trafficmon/pkg/dedup"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// recordingSink keeps inserted records in memory. Only Insert is used by the
// pipeline.
type recordingSink struct {
	mu      sync.Mutex
	records []requestlog.Record
	err     error
}

func (s *recordingSink) Insert(_ context.Context, rec *requestlog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	rec.ID = int64(len(s.records) + 1)
	s.records = append(s.records, *rec)
	return nil
}

func (s *recordingSink) Query(context.Context, requestlog.Query) ([]requestlog.Record, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]requestlog.Record(nil), s.records...), int64(len(s.records)), nil
}

func (s *recordingSink) Get(_ context.Context, id int64) (requestlog.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return requestlog.Record{}, requestlog.ErrNotFound
}

func (s *recordingSink) Delete(context.Context, ...int64) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *recordingSink) DeleteAll(context.Context) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *recordingSink) all() []requestlog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]requestlog.Record(nil), s.records...)
}

type countingObserver struct {
	mu         sync.Mutex
	outcomes   map[string]int
	sinkErrors int
	dedupErrs  int
}

func (o *countingObserver) ObserveOutcome(origin, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[origin+"/"+status]++
}

func (o *countingObserver) ObserveSinkError(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinkErrors++
}

func (o *countingObserver) ObserveDedupError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dedupErrs++
}

type brokenStore struct{}

func (brokenStore) SetIfAbsent(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func newGuard(t *testing.T) *dedup.Guard {
	t.Helper()
	store, err := dedup.NewMemoryStore(1000)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return dedup.New(store)
}

func newService(t *testing.T, sink requestlog.Sink, opts ...requestlog.ServiceOption) *requestlog.Service {
	t.Helper()
	return requestlog.NewService(requestlog.DefaultConfig(), sink, newGuard(t), opts...)
}
