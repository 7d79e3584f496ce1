package requestlog

import (
	"fmt"
	"strings"
)

// Origin is how a request reached the logging pipeline.
type Origin uint8

const (
	// OriginIgnore marks traffic that is never logged: admin pages, API
	// calls, cron and websocket upgrades.
	OriginIgnore Origin = iota
	// OriginDirect is a page request served by this process.
	OriginDirect
	// OriginBeacon is a client-side report for a page served from cache.
	OriginBeacon
)

func (o Origin) String() string {
	switch o {
	case OriginDirect:
		return "direct"
	case OriginBeacon:
		return "beacon"
	default:
		return "ignore"
	}
}

func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Origin) UnmarshalText(text []byte) error {
	v, err := ParseOrigin(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// ParseOrigin is the inverse of Origin.String. Matching is case-insensitive.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct":
		return OriginDirect, nil
	case "beacon":
		return OriginBeacon, nil
	case "ignore":
		return OriginIgnore, nil
	default:
		return OriginIgnore, fmt.Errorf("%w: %q", ErrInvalidOrigin, s)
	}
}
