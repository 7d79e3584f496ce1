// Package dedup suppresses duplicate log writes for one logical page load.
//
// A Guard derives a key from the page nonce and a hash of the client IP and
// asks its Store to set that key only if absent. The first caller within the
// TTL wins; later callers with the same nonce and IP are told not to log.
// Keys are never deleted explicitly and expire after the TTL (60s by default).
//
// Both stores perform the check and the set as a single atomic operation, so
// concurrent duplicates cannot both pass:
//
//   - MemoryStore keeps keys in an otter cache local to the process.
//   - RedisStore issues SET NX EX so that several instances share one window.
//
// A failing store does not block logging. ShouldLog then returns true together
// with an error wrapping ErrStoreUnavailable, and the caller decides whether to
// log a warning.
package dedup
