package dedup_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trafficmon/pkg/dedup"
)

func newGuard(t *testing.T, opts ...dedup.Option) *dedup.Guard {
	t.Helper()
	store, err := dedup.NewMemoryStore(1000)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return dedup.New(store, opts...)
}

func TestKey(t *testing.T) {
	t.Parallel()

	k := dedup.Key("abc", "203.0.113.7")
	assert.True(t, strings.HasPrefix(k, "tfcm_abc_"))
	assert.Len(t, k, len("tfcm_abc_")+16)
	assert.NotContains(t, k, "203.0.113.7")
	assert.Equal(t, k, dedup.Key("abc", "203.0.113.7"))
	assert.NotEqual(t, k, dedup.Key("abc", "203.0.113.8"))
	assert.NotEqual(t, k, dedup.Key("abd", "203.0.113.7"))
}

func TestShouldLog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newGuard(t)

	ok, err := g.ShouldLog(ctx, "n1", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "first call logs")

	for range 5 {
		ok, err = g.ShouldLog(ctx, "n1", "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, ok, "repeat within TTL is suppressed")
	}

	ok, err = g.ShouldLog(ctx, "n1", "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "different IP has its own window")

	ok, err = g.ShouldLog(ctx, "n2", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "different nonce has its own window")
}

func TestShouldLogMissingNonce(t *testing.T) {
	t.Parallel()

	ok, err := newGuard(t).ShouldLog(context.Background(), "", "1.2.3.4")
	assert.False(t, ok)
	assert.ErrorIs(t, err, dedup.ErrMissingNonce)
}

func TestShouldLogExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newGuard(t, dedup.WithTTL(50*time.Millisecond))

	ok, err := g.ShouldLog(ctx, "n", "1.1.1.1")
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		ok, _ := g.ShouldLog(ctx, "n", "1.1.1.1")
		return ok
	}, 3*time.Second, 25*time.Millisecond, "key expires after TTL")
}

func TestShouldLogConcurrentAtMostOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newGuard(t)

	var (
		wg     sync.WaitGroup
		passed atomic.Int32
		start  = make(chan struct{})
	)
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if ok, _ := g.ShouldLog(ctx, "race", "9.9.9.9"); ok {
				passed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), passed.Load())
}

type failingStore struct{}

func (failingStore) SetIfAbsent(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func TestShouldLogFailsOpen(t *testing.T) {
	t.Parallel()

	ok, err := dedup.New(failingStore{}).ShouldLog(context.Background(), "n", "1.1.1.1")
	assert.True(t, ok)
	assert.ErrorIs(t, err, dedup.ErrStoreUnavailable)
}

type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]time.Duration
	err  error
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, _ any, exp time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = exp
	return redis.NewBoolResult(true, nil)
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := &fakeRedis{keys: map[string]time.Duration{}}
	g := dedup.New(dedup.NewRedisStore(fake), dedup.WithTTL(30*time.Second))

	ok, err := g.ShouldLog(ctx, "n", "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = g.ShouldLog(ctx, "n", "1.1.1.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, fake.keys[dedup.Key("n", "1.1.1.1")])

	fake.err = errors.New("redis down")
	ok, err = g.ShouldLog(ctx, "m", "1.1.1.1")
	assert.True(t, ok)
	assert.ErrorIs(t, err, dedup.ErrStoreUnavailable)
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	s, err := dedup.NewStore(dedup.Config{Driver: "memory", Capacity: 10}, nil)
	require.NoError(t, err)
	assert.IsType(t, &dedup.MemoryStore{}, s)

	s, err = dedup.NewStore(dedup.Config{Driver: "redis"}, &fakeRedis{keys: map[string]time.Duration{}})
	require.NoError(t, err)
	assert.IsType(t, &dedup.RedisStore{}, s)

	_, err = dedup.NewStore(dedup.Config{Driver: "redis"}, nil)
	assert.ErrorIs(t, err, dedup.ErrStoreUnavailable)

	_, err = dedup.NewStore(dedup.Config{Driver: "etcd"}, nil)
	assert.ErrorIs(t, err, dedup.ErrUnknownDriver)
}
