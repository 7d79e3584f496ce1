package logstore_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, rec *requestlog.Record) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) InsertBatch(ctx context.Context, recs []*requestlog.Record) error {
	return m.Called(ctx, recs).Error(0)
}

func (m *mockStore) Query(ctx context.Context, q requestlog.Query) ([]requestlog.Record, int64, error) {
	args := m.Called(ctx, q)
	recs, _ := args.Get(0).([]requestlog.Record)
	return recs, args.Get(1).(int64), args.Error(2)
}

func (m *mockStore) Get(ctx context.Context, id int64) (requestlog.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(requestlog.Record), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, ids ...int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type stateRecorder struct {
	mu     sync.Mutex
	states []int
}

func (r *stateRecorder) SetBreakerState(_ string, state int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *stateRecorder) last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

type asyncStats struct {
	mu      sync.Mutex
	batches []int
	dropped int
	errors  int
}

func (s *asyncStats) ObserveBatch(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, size)
}

func (s *asyncStats) SetBuffered(int) {}

func (s *asyncStats) ObserveDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped++
}

func (s *asyncStats) ObserveInsert(_ time.Duration, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}
