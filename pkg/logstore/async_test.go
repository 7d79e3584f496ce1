package logstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trafficmon/pkg/logstore"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

func TestAsyncFlushesOnClose(t *testing.T) {
	t.Parallel()

	mem := logstore.NewMemory()
	stats := &asyncStats{}
	a := logstore.NewAsync(mem, logstore.AsyncOptions{
		BatchSize:    4,
		BatchTimeout: time.Hour,
	}, logstore.WithAsyncObserver(stats))

	ctx := context.Background()
	for i := range 10 {
		require.NoError(t, a.Insert(ctx, directRecord("/", base.Add(time.Duration(i)*time.Second))))
	}
	require.NoError(t, a.Close(ctx))

	_, total, err := mem.Query(ctx, requestlog.Query{})
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)

	stats.mu.Lock()
	defer stats.mu.Unlock()
	sum := 0
	for _, n := range stats.batches {
		assert.LessOrEqual(t, n, 4)
		sum += n
	}
	assert.Equal(t, 10, sum)
}

func TestAsyncFlushesOnTimeout(t *testing.T) {
	t.Parallel()

	mem := logstore.NewMemory()
	a := logstore.NewAsync(mem, logstore.AsyncOptions{
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	})
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	require.NoError(t, a.Insert(context.Background(), directRecord("/late", base)))

	require.Eventually(t, func() bool {
		_, total, err := mem.Query(context.Background(), requestlog.Query{})
		return err == nil && total == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAsyncCopiesRecord(t *testing.T) {
	t.Parallel()

	mem := logstore.NewMemory()
	a := logstore.NewAsync(mem, logstore.AsyncOptions{BatchTimeout: time.Hour})

	rec := directRecord("/original", base)
	require.NoError(t, a.Insert(context.Background(), rec))
	rec.TargetPath = "/mutated"
	require.NoError(t, a.Close(context.Background()))

	recs, _, err := mem.Query(context.Background(), requestlog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "/original", recs[0].TargetPath)
	assert.Zero(t, rec.ID)
}

func TestAsyncDropsWhenFull(t *testing.T) {
	t.Parallel()

	release := make(chan time.Time)
	store := new(mockStore)
	store.On("InsertBatch", mock.Anything, mock.Anything).
		WaitUntil(release).
		Return(nil)

	stats := &asyncStats{}
	a := logstore.NewAsync(store, logstore.AsyncOptions{
		BufferSize:   2,
		BatchSize:    1,
		BatchTimeout: time.Hour,
	}, logstore.WithAsyncObserver(stats))

	ctx := context.Background()
	var dropped int
	for range 10 {
		if err := a.Insert(ctx, directRecord("/", base)); err != nil {
			require.ErrorIs(t, err, logstore.ErrBufferFull)
			dropped++
		}
	}
	close(release)
	require.NoError(t, a.Close(ctx))

	assert.Positive(t, dropped)
	stats.mu.Lock()
	assert.Equal(t, dropped, stats.dropped)
	stats.mu.Unlock()
}

func TestAsyncRejectsAfterClose(t *testing.T) {
	t.Parallel()

	a := logstore.NewAsync(logstore.NewMemory(), logstore.AsyncOptions{})
	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()))

	err := a.Insert(context.Background(), directRecord("/", base))
	assert.ErrorIs(t, err, logstore.ErrClosed)
}

func TestAsyncReportsWriteErrors(t *testing.T) {
	t.Parallel()

	store := new(mockStore)
	store.On("InsertBatch", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	stats := &asyncStats{}
	a := logstore.NewAsync(store, logstore.AsyncOptions{BatchSize: 1}, logstore.WithAsyncObserver(stats))
	require.NoError(t, a.Insert(context.Background(), directRecord("/", base)))
	require.NoError(t, a.Close(context.Background()))

	stats.mu.Lock()
	defer stats.mu.Unlock()
	assert.Equal(t, 1, stats.errors)
}

func TestAsyncConcurrentInsertAndClose(t *testing.T) {
	t.Parallel()

	mem := logstore.NewMemory()
	a := logstore.NewAsync(mem, logstore.AsyncOptions{BufferSize: 10_000, BatchSize: 16})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if a.Insert(context.Background(), directRecord("/", base)) == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	require.NoError(t, a.Close(context.Background()))

	_, total, err := mem.Query(context.Background(), requestlog.Query{})
	require.NoError(t, err)
	assert.EqualValues(t, accepted, total)
}
