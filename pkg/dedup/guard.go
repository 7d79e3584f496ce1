package dedup

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a page load stays deduplicated.
const DefaultTTL = 60 * time.Second

// Config selects and sizes the dedup store.
type Config struct {
	Driver   string        `env:"DEDUP_DRIVER" envDefault:"memory"`
	TTL      time.Duration `env:"DEDUP_TTL" envDefault:"60s"`
	Capacity int           `env:"DEDUP_CAPACITY" envDefault:"100000"`
}

// Guard decides whether a request should be logged.
type Guard struct {
	store Store
	ttl   time.Duration
}

// Option configures a Guard.
type Option func(*Guard)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

func New(store Store, opts ...Option) *Guard {
	g := &Guard{store: store, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ShouldLog marks the nonce and client IP pair as seen and reports whether
// this call was the first within the TTL.
//
// An empty nonce yields false and ErrMissingNonce. Store failures yield true
// and an error wrapping ErrStoreUnavailable.
func (g *Guard) ShouldLog(ctx context.Context, nonce, clientIP string) (bool, error) {
	if nonce == "" {
		return false, ErrMissingNonce
	}

	ok, err := g.store.SetIfAbsent(ctx, Key(nonce, clientIP), g.ttl)
	if err != nil {
		if !errors.Is(err, ErrStoreUnavailable) {
			err = errors.Join(ErrStoreUnavailable, err)
		}
		return true, err
	}
	return ok, nil
}
