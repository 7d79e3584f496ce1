package requestlog

import "errors"

var (
	ErrNotFound      = errors.New("requestlog: record not found")
	ErrInvalidOrigin = errors.New("requestlog: invalid origin")
)
