package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the bucket is full again.
	ResetAt time.Time
	// Delay is how long a rejected caller should wait before retrying.
	Delay time.Duration
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return r.Delay
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Config sets the per-key token bucket. Rate is in requests per second.
type Config struct {
	Rate    float64       `env:"RATELIMIT_RATE" envDefault:"5"`
	Burst   int           `env:"RATELIMIT_BURST" envDefault:"20"`
	IdleTTL time.Duration `env:"RATELIMIT_IDLE_TTL" envDefault:"10m"`
	MaxKeys int           `env:"RATELIMIT_MAX_KEYS" envDefault:"100000"`
}
