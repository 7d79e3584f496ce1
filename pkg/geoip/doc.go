// Package geoip resolves client addresses to ISO country codes from a
// MaxMind-format database (GeoLite2-Country, DB-IP country lite).
//
// The database file is reloaded in place on a cron schedule so that an
// external updater can replace it without restarting the process. Lookups
// never fail: unknown addresses, private ranges and a missing database all
// yield an empty string.
package geoip
