package useragent

import "errors"

// ErrInvalidRules is returned when the embedded vocabulary tables cannot be decoded.
var ErrInvalidRules = errors.New("useragent: invalid rule tables")
