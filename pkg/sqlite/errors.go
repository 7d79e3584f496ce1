package sqlite

import "errors"

var (
	ErrEmptyPath               = errors.New("empty sqlite database path")
	ErrOpen                    = errors.New("failed to open sqlite database")
	ErrHealthcheckFailed       = errors.New("sqlite healthcheck failed")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
)
