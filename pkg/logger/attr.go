package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under the key "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Origin records the request origin kind (direct or beacon).
func Origin(origin string) slog.Attr {
	return slog.String("origin", origin)
}

// Outcome records the pipeline result for a request.
func Outcome(status string) slog.Attr {
	return slog.String("outcome", status)
}

// ClientIP records the resolved client address.
func ClientIP(ip string) slog.Attr {
	return slog.String("client_ip", ip)
}

// Nonce records the page nonce. Empty values produce an empty Attr.
func Nonce(nonce string) slog.Attr {
	if nonce == "" {
		return slog.Attr{}
	}
	return slog.String("nonce", nonce)
}

// Path records a request path under the key "path".
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// RecordID records a stored log row identifier.
func RecordID(id int64) slog.Attr {
	return slog.Int64("record_id", id)
}

// Count records a number of affected items.
func Count(n int64) slog.Attr {
	return slog.Int64("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
