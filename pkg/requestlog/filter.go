package requestlog

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/dmitrymomot/trafficmon/pkg/clientip"
)

var staticRe = regexp.MustCompile(`(?i)\.(css|js|jpg|jpeg|png|gif|svg|woff|woff2|ttf|ico|map)$`)

func acceptsHTML(accept string) bool {
	return strings.Contains(strings.ToLower(accept), "text/html")
}

// isStatic reports whether target points at an asset or an API endpoint.
// The extension check ignores the query string and fragment. APIPrefix
// matches the start of the path; IgnoreMarkers match anywhere in target.
func (c Config) isStatic(target string) bool {
	path := target
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if staticRe.MatchString(path) {
		return true
	}
	if c.APIPrefix != "" && strings.HasPrefix(strings.ToLower(pathOf(target)), strings.ToLower(c.APIPrefix)) {
		return true
	}

	lower := strings.ToLower(target)
	for _, marker := range c.IgnoreMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// isLocalhost reports whether a beacon was sent from a development host.
func isLocalhost(target string) bool {
	if strings.Contains(strings.ToLower(target), "localhost") {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return clientip.IsLocal(u.Hostname())
}

// pathOf reduces a full URL to its path, keeping raw when it cannot be parsed
// or has no path.
func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	return u.Path
}
