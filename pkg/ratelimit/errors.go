package ratelimit

import "errors"

var (
	ErrInvalidLimit = errors.New("ratelimit: invalid limit")
	ErrInvalidBurst = errors.New("ratelimit: invalid burst")
	ErrCache        = errors.New("ratelimit: failed to build limiter cache")
)
