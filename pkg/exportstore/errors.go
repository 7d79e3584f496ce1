package exportstore

import "errors"

var (
	ErrInvalidName   = errors.New("exportstore: invalid export name")
	ErrNotFound      = errors.New("exportstore: export not found")
	ErrInvalidConfig = errors.New("exportstore: invalid configuration")
	ErrUnknownDriver = errors.New("exportstore: unknown driver")

	ErrWrite  = errors.New("exportstore: failed to write export")
	ErrRead   = errors.New("exportstore: failed to read export")
	ErrDelete = errors.New("exportstore: failed to delete exports")

	// S3 classification
	ErrBucketNotFound     = errors.New("exportstore: bucket not found")
	ErrAccessDenied       = errors.New("exportstore: access denied")
	ErrServiceUnavailable = errors.New("exportstore: service temporarily unavailable")
	ErrOperationTimeout   = errors.New("exportstore: operation timed out")
	ErrFailedToLoadConfig = errors.New("exportstore: failed to load AWS config")
)
