// Package retention deletes log records older than a configured age on a cron
// schedule. A failed purge is retried with exponential backoff; the next
// scheduled run picks up whatever is left.
package retention
