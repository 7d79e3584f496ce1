package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/logstore"
	"github.com/dmitrymomot/trafficmon/pkg/metrics"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

func TestOpenStorageMemoryWithDecorators(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := openStorage(ctx, logstore.Config{
		Driver:       logstore.DriverMemory,
		Async:        true,
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		Breaker:      true,
	}, logger.Discard(), metrics.New(nil))
	require.NoError(t, err)

	assert.IsType(t, &logstore.Async{}, s.store)
	assert.IsType(t, &logstore.Breaker{}, s.direct)

	rec := &requestlog.Record{CapturedAt: time.Now(), Origin: requestlog.OriginDirect, TargetPath: "/"}
	require.NoError(t, s.store.Insert(ctx, rec))
	require.NoError(t, s.Close(ctx), "close flushes the buffer")

	_, total, err := s.direct.Query(ctx, requestlog.Query{}.Normalize())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestOpenStoragePlain(t *testing.T) {
	t.Parallel()

	s, err := openStorage(context.Background(), logstore.Config{Driver: logstore.DriverMemory}, logger.Discard(), metrics.New(nil))
	require.NoError(t, err)
	assert.IsType(t, &logstore.Memory{}, s.store)
	assert.Same(t, s.store, s.direct)
	assert.Nil(t, s.async)
}

func TestOpenStorageUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := openStorage(context.Background(), logstore.Config{Driver: "cassandra"}, logger.Discard(), metrics.New(nil))
	require.ErrorIs(t, err, errUnknownStorage)
}
