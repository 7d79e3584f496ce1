package ratelimit_test

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/trafficmon/pkg/ratelimit"
)

func fixed(s string) ratelimit.KeyFunc {
	return func(*http.Request) string { return s }
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}

func TestComposite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		keyFuncs []ratelimit.KeyFunc
		want     string
	}{
		{"no key functions", nil, ""},
		{"all empty", []ratelimit.KeyFunc{fixed(""), fixed("")}, ""},
		{"single key", []ratelimit.KeyFunc{fixed("203.0.113.7")}, "203.0.113.7"},
		{"joined and empty parts skipped", []ratelimit.KeyFunc{fixed("203.0.113.7"), fixed(""), fixed("/beacon")}, "203.0.113.7:/beacon"},
		{"exactly 64 bytes kept", []ratelimit.KeyFunc{fixed(strings.Repeat("a", 31)), fixed(strings.Repeat("b", 32))}, strings.Repeat("a", 31) + ":" + strings.Repeat("b", 32)},
		{"long single key hashed", []ratelimit.KeyFunc{fixed(strings.Repeat("a", 70))}, digest(strings.Repeat("a", 70))},
		{"long combined key hashed", []ratelimit.KeyFunc{fixed(strings.Repeat("a", 40)), fixed(strings.Repeat("b", 40))}, digest(strings.Repeat("a", 40) + ":" + strings.Repeat("b", 40))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			assert.Equal(t, tt.want, ratelimit.Composite(tt.keyFuncs...)(req))
		})
	}
}

func TestCompositeOrderMatters(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	a, b := fixed(strings.Repeat("a", 100)), fixed(strings.Repeat("b", 100))
	assert.NotEqual(t, ratelimit.Composite(a, b)(req), ratelimit.Composite(b, a)(req))
}

func TestBuiltinKeys(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/beacon", nil)
	req.RemoteAddr = "198.51.100.4:51000"

	assert.Equal(t, "198.51.100.4", ratelimit.ByClientIP(req))
	assert.Equal(t, "/beacon", ratelimit.ByPath(req))
	assert.Equal(t, "198.51.100.4:/beacon", ratelimit.Composite(ratelimit.ByClientIP, ratelimit.ByPath)(req))
}
