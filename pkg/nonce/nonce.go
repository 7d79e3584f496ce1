package nonce

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Header carries the nonce on responses.
const Header = "X-Traffic-Nonce"

const maxLength = 64

var validRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// New returns a fresh random nonce.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s looks like a nonce a client may echo back.
func Valid(s string) bool {
	return s != "" && len(s) <= maxLength && validRe.MatchString(s)
}

type contextKey struct{}

func WithContext(ctx context.Context, n string) context.Context {
	return context.WithValue(ctx, contextKey{}, n)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	n, _ := ctx.Value(contextKey{}).(string)
	return n
}

// Middleware mints a nonce for every request. Incoming values are never
// trusted: each response cycle gets its own token.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, Attach(w, r, New()))
	})
}

// Attach publishes n for the current request cycle. It sets the Header on
// the response, replaces any client-sent Header on a copy of r so an upstream
// behind a reverse proxy receives the token, and stores n in the context.
func Attach(w http.ResponseWriter, r *http.Request, n string) *http.Request {
	w.Header().Set(Header, n)
	r = r.Clone(WithContext(r.Context(), n))
	r.Header.Set(Header, n)
	return r
}

// LoggerExtractor adds the nonce to log records written with a request context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if n := FromContext(ctx); n != "" {
			return slog.String("nonce", n), true
		}
		return slog.Attr{}, false
	}
}
