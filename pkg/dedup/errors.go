package dedup

import "errors"

var (
	ErrMissingNonce     = errors.New("dedup: missing nonce")
	ErrStoreUnavailable = errors.New("dedup: store unavailable")
	ErrUnknownDriver    = errors.New("dedup: unknown store driver")
)
