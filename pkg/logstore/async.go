package logstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// AsyncOptions controls batching. Zero values fall back to defaults.
type AsyncOptions struct {
	BufferSize     int           // records queued before new ones are dropped
	BatchSize      int           // records per write
	BatchTimeout   time.Duration // longest a partial batch waits
	StorageTimeout time.Duration // per-batch write timeout
}

// AsyncObserver receives buffer and batch statistics.
type AsyncObserver interface {
	ObserveBatch(size int)
	SetBuffered(n int)
	ObserveDropped()
	ObserveInsert(d time.Duration, err error)
}

type noopAsyncObserver struct{}

func (noopAsyncObserver) ObserveBatch(int)                   {}
func (noopAsyncObserver) SetBuffered(int)                    {}
func (noopAsyncObserver) ObserveDropped()                    {}
func (noopAsyncObserver) ObserveInsert(time.Duration, error) {}

// Async moves inserts off the request path. Insert only enqueues; a worker
// writes batches through the wrapped store. Reads and deletes go straight to
// the wrapped store. Records inserted through Async keep a zero ID.
type Async struct {
	Store

	queue     chan *requestlog.Record
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	opts      AsyncOptions
	log       *slog.Logger
	obs       AsyncObserver
}

type AsyncOption func(*Async)

func WithAsyncLogger(l *slog.Logger) AsyncOption {
	return func(a *Async) {
		if l != nil {
			a.log = l
		}
	}
}

func WithAsyncObserver(o AsyncObserver) AsyncOption {
	return func(a *Async) {
		if o != nil {
			a.obs = o
		}
	}
}

// NewAsync starts the batching worker. Call Close on shutdown to flush.
func NewAsync(store Store, opts AsyncOptions, options ...AsyncOption) *Async {
	if store == nil {
		panic("logstore: store cannot be nil")
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 500 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}

	a := &Async{
		Store: store,
		queue: make(chan *requestlog.Record, opts.BufferSize),
		done:  make(chan struct{}),
		opts:  opts,
		log:   logger.Discard(),
		obs:   noopAsyncObserver{},
	}
	for _, opt := range options {
		opt(a)
	}

	a.wg.Add(1)
	go a.worker()
	return a
}

// Insert enqueues a copy of rec. It returns ErrBufferFull when the buffer is
// full and ErrClosed after Close.
func (a *Async) Insert(_ context.Context, rec *requestlog.Record) error {
	select {
	case <-a.done:
		return ErrClosed
	default:
	}

	cp := *rec
	select {
	case a.queue <- &cp:
		a.obs.SetBuffered(len(a.queue))
		return nil
	case <-a.done:
		return ErrClosed
	default:
		a.obs.ObserveDropped()
		return ErrBufferFull
	}
}

// InsertBatch enqueues every record, stopping at the first failure.
func (a *Async) InsertBatch(ctx context.Context, recs []*requestlog.Record) error {
	for _, rec := range recs {
		if err := a.Insert(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (a *Async) worker() {
	defer a.wg.Done()

	batch := make([]*requestlog.Record, 0, a.opts.BatchSize)
	ticker := time.NewTicker(a.opts.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		a.write(batch)
		clear(batch)
		batch = batch[:0]
		a.obs.SetBuffered(len(a.queue))
	}

	for {
		select {
		case rec := <-a.queue:
			batch = append(batch, rec)
			if len(batch) >= a.opts.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-a.done:
			for {
				select {
				case rec := <-a.queue:
					batch = append(batch, rec)
					if len(batch) >= a.opts.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// write runs detached from any request context.
func (a *Async) write(batch []*requestlog.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.StorageTimeout)
	defer cancel()

	start := time.Now()
	err := a.Store.InsertBatch(ctx, batch)
	a.obs.ObserveInsert(time.Since(start), err)
	a.obs.ObserveBatch(len(batch))

	if err != nil {
		a.log.ErrorContext(ctx, "failed to write record batch",
			logger.Component("logstore.async"),
			logger.Count(int64(len(batch))),
			logger.Error(err),
		)
	}
}

// Close stops accepting records and waits for the buffer to be written or ctx
// to expire, whichever comes first.
func (a *Async) Close(ctx context.Context) error {
	a.closeOnce.Do(func() { close(a.done) })

	finished := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
