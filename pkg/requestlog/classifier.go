package requestlog

import (
	"net/http"
	"strings"
)

// Environment holds the signals the classifier looks at. It is built once
// per request and never consulted again after classification.
type Environment struct {
	Admin        bool
	Async        bool
	BeaconAction bool
	REST         bool
	CLI          bool
	Cron         bool
	WebSocket    bool
	HasMethod    bool
	XMLRPC       bool
}

// Classify maps env to an Origin. Checks run in a fixed priority order and
// the first match wins.
func Classify(env Environment) Origin {
	switch {
	case env.Admin:
		return OriginIgnore
	case env.Async:
		if env.BeaconAction {
			return OriginBeacon
		}
		return OriginIgnore
	case env.REST, env.CLI, env.Cron, env.WebSocket:
		return OriginIgnore
	case env.HasMethod:
		return OriginDirect
	default:
		// XML-RPC and anything unrecognised.
		return OriginIgnore
	}
}

// Config holds the path layout used to classify and filter requests.
type Config struct {
	AdminPrefix   string   `env:"TRAFFIC_ADMIN_PREFIX" envDefault:"/admin"`
	BeaconPath    string   `env:"TRAFFIC_BEACON_PATH" envDefault:"/beacon"`
	ScriptPath    string   `env:"TRAFFIC_SCRIPT_PATH" envDefault:"/trafficmon.js"`
	APIPrefix     string   `env:"TRAFFIC_API_PREFIX" envDefault:"/api/"`
	CronPath      string   `env:"TRAFFIC_CRON_PATH" envDefault:"/cron"`
	XMLRPCPath    string   `env:"TRAFFIC_XMLRPC_PATH" envDefault:"/xmlrpc.php"`
	IgnoreMarkers []string `env:"TRAFFIC_IGNORE_MARKERS" envDefault:"/wp-json/" envSeparator:","`
	DefaultRole   string   `env:"TRAFFIC_DEFAULT_ROLE" envDefault:"visitor"`
}

// DefaultConfig returns the values used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		AdminPrefix:   "/admin",
		BeaconPath:    "/beacon",
		ScriptPath:    "/trafficmon.js",
		APIPrefix:     "/api/",
		CronPath:      "/cron",
		XMLRPCPath:    "/xmlrpc.php",
		IgnoreMarkers: []string{"/wp-json/"},
		DefaultRole:   "visitor",
	}
}

// Environment derives classification signals from r. A nil request means the
// code is not serving HTTP at all and reports the CLI signal.
func (c Config) Environment(r *http.Request) Environment {
	if r == nil {
		return Environment{CLI: true}
	}

	path := r.URL.Path
	beacon := c.BeaconPath != "" && path == c.BeaconPath

	return Environment{
		Admin:        hasPrefix(path, c.AdminPrefix),
		Async:        beacon || strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest"),
		BeaconAction: beacon,
		REST:         hasPrefix(path, c.APIPrefix),
		Cron:         c.CronPath != "" && path == c.CronPath,
		WebSocket:    strings.EqualFold(r.Header.Get("Upgrade"), "websocket"),
		HasMethod:    r.Method != "",
		XMLRPC:       c.XMLRPCPath != "" && path == c.XMLRPCPath,
	}
}

// Classify is shorthand for Classify(c.Environment(r)).
func (c Config) Classify(r *http.Request) Origin {
	return Classify(c.Environment(r))
}

func hasPrefix(path, prefix string) bool {
	return prefix != "" && strings.HasPrefix(path, prefix)
}
