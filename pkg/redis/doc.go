// Package redis connects to Redis with go-redis/v9.
//
// Connect retries the initial ping within a bounded timeout, and Healthcheck
// returns a probe for the readiness endpoint. The dedup guard uses the
// returned client for its cross-instance SET NX store.
package redis
