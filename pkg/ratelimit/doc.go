// Package ratelimit throttles HTTP requests per key with a token bucket.
//
// Each key (by default the client IP) owns a golang.org/x/time/rate limiter
// kept in a bounded otter cache. Middleware sets the X-RateLimit-* headers,
// answers 429 with Retry-After when the bucket is empty and lets the request
// through if the limiter itself fails.
package ratelimit
