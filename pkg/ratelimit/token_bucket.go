package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/maypok86/otter"
	"golang.org/x/time/rate"
)

// TokenBucket keeps one rate.Limiter per key. Keys not seen for IdleTTL are
// evicted, as are the least used keys once MaxKeys is reached; an evicted
// key starts again with a full bucket.
type TokenBucket struct {
	limit rate.Limit
	burst int
	cache otter.Cache[string, *rate.Limiter]
	now   func() time.Time
}

func NewTokenBucket(cfg Config) (*TokenBucket, error) {
	if cfg.Rate <= 0 || math.IsInf(cfg.Rate, 0) || math.IsNaN(cfg.Rate) {
		return nil, ErrInvalidLimit
	}
	if cfg.Burst <= 0 {
		return nil, ErrInvalidBurst
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 100_000
	}

	cache, err := otter.MustBuilder[string, *rate.Limiter](cfg.MaxKeys).
		WithTTL(cfg.IdleTTL).
		Build()
	if err != nil {
		return nil, errors.Join(ErrCache, err)
	}

	return &TokenBucket{
		limit: rate.Limit(cfg.Rate),
		burst: cfg.Burst,
		cache: cache,
		now:   time.Now,
	}, nil
}

func (b *TokenBucket) limiter(key string) *rate.Limiter {
	if l, ok := b.cache.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(b.limit, b.burst)
	if b.cache.SetIfAbsent(key, l) {
		return l
	}
	if existing, ok := b.cache.Get(key); ok {
		return existing
	}
	return l
}

func (b *TokenBucket) Allow(_ context.Context, key string) (*Result, error) {
	now := b.now()
	l := b.limiter(key)

	res := &Result{Limit: b.burst}
	r := l.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.Delay = delay
	} else {
		res.Allowed = true
	}

	tokens := l.TokensAt(now)
	res.Remaining = max(int(tokens), 0)
	missing := float64(b.burst) - tokens
	res.ResetAt = now.Add(time.Duration(missing / float64(b.limit) * float64(time.Second)))
	return res, nil
}

// Close stops the cache's background maintenance.
func (b *TokenBucket) Close() {
	b.cache.Close()
}
