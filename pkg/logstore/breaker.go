package logstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// BreakerObserver is told about breaker state changes. States follow
// gobreaker: 0 closed, 1 half-open, 2 open.
type BreakerObserver interface {
	SetBreakerState(name string, state int)
}

// Breaker stops calling a failing store. After Failures consecutive errors
// every call fails fast with gobreaker.ErrOpenState until Timeout has passed.
// Not-found results and cancelled contexts do not count as failures.
type Breaker struct {
	store Store
	cb    *gobreaker.CircuitBreaker
}

// BreakerSettings configures a Breaker.
type BreakerSettings struct {
	Name     string
	Failures uint32
	Timeout  time.Duration
	Logger   *slog.Logger
	Observer BreakerObserver
}

func NewBreaker(store Store, s BreakerSettings) *Breaker {
	if s.Failures == 0 {
		s.Failures = 5
	}
	if s.Logger == nil {
		s.Logger = logger.Discard()
	}
	if s.Observer != nil {
		s.Observer.SetBreakerState(s.Name, int(gobreaker.StateClosed))
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, requestlog.ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.Logger.Warn("storage circuit breaker state changed",
				logger.Component("logstore.breaker"),
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			if s.Observer != nil {
				s.Observer.SetBreakerState(name, int(to))
			}
		},
	})

	return &Breaker{store: store, cb: cb}
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func (b *Breaker) Insert(ctx context.Context, rec *requestlog.Record) error {
	return b.run(func() error { return b.store.Insert(ctx, rec) })
}

func (b *Breaker) InsertBatch(ctx context.Context, recs []*requestlog.Record) error {
	return b.run(func() error { return b.store.InsertBatch(ctx, recs) })
}

func (b *Breaker) Query(ctx context.Context, q requestlog.Query) ([]requestlog.Record, int64, error) {
	var (
		recs  []requestlog.Record
		total int64
	)
	err := b.run(func() error {
		var err error
		recs, total, err = b.store.Query(ctx, q)
		return err
	})
	return recs, total, err
}

func (b *Breaker) Get(ctx context.Context, id int64) (requestlog.Record, error) {
	var rec requestlog.Record
	err := b.run(func() error {
		var err error
		rec, err = b.store.Get(ctx, id)
		return err
	})
	return rec, err
}

func (b *Breaker) Delete(ctx context.Context, ids ...int64) (int64, error) {
	return b.count(func() (int64, error) { return b.store.Delete(ctx, ids...) })
}

func (b *Breaker) DeleteAll(ctx context.Context) (int64, error) {
	return b.count(func() (int64, error) { return b.store.DeleteAll(ctx) })
}

func (b *Breaker) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return b.count(func() (int64, error) { return b.store.DeleteBefore(ctx, cutoff) })
}

func (b *Breaker) run(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}

func (b *Breaker) count(fn func() (int64, error)) (int64, error) {
	var n int64
	err := b.run(func() error {
		var err error
		n, err = fn()
		return err
	})
	return n, err
}
