package geoip

import "errors"

var (
	ErrEmptyPath       = errors.New("geoip: database path is empty")
	ErrOpen            = errors.New("geoip: failed to open database")
	ErrInvalidSchedule = errors.New("geoip: invalid reload schedule")
)
