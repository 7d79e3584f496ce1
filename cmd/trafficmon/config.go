package main

import (
	"time"

	"github.com/dmitrymomot/trafficmon/pkg/admin"
	"github.com/dmitrymomot/trafficmon/pkg/config"
	"github.com/dmitrymomot/trafficmon/pkg/dedup"
	"github.com/dmitrymomot/trafficmon/pkg/exportstore"
	"github.com/dmitrymomot/trafficmon/pkg/geoip"
	"github.com/dmitrymomot/trafficmon/pkg/httpserver"
	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/logstore"
	"github.com/dmitrymomot/trafficmon/pkg/ratelimit"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
	"github.com/dmitrymomot/trafficmon/pkg/retention"
)

// appConfig holds the settings owned by the binary itself.
type appConfig struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Name string `env:"APP_NAME" envDefault:"trafficmon"`

	// UpstreamURL is the site being monitored. When empty StaticDir is served.
	UpstreamURL string `env:"UPSTREAM_URL"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"public"`

	RoleHeader    string        `env:"ROLE_HEADER" envDefault:"X-Actor-Role"`
	HealthTimeout time.Duration `env:"HEALTH_TIMEOUT" envDefault:"3s"`
	Metrics       bool          `env:"METRICS_ENABLED" envDefault:"true"`
}

type settings struct {
	App       appConfig
	Log       logger.Config
	HTTP      httpserver.Config
	Traffic   requestlog.Config
	Storage   logstore.Config
	Dedup     dedup.Config
	RateLimit ratelimit.Config
	Admin     admin.Config
	Export    exportstore.Config
	GeoIP     geoip.Config
	Retention retention.Config
}

func loadSettings() (settings, error) {
	var s settings
	for _, load := range []func() error{
		func() error { return config.Load(&s.App) },
		func() error { return config.Load(&s.Log) },
		func() error { return config.Load(&s.HTTP) },
		func() error { return config.Load(&s.Traffic) },
		func() error { return config.Load(&s.Storage) },
		func() error { return config.Load(&s.Dedup) },
		func() error { return config.Load(&s.RateLimit) },
		func() error { return config.Load(&s.Admin) },
		func() error { return config.Load(&s.Export) },
		func() error { return config.Load(&s.GeoIP) },
		func() error { return config.Load(&s.Retention) },
	} {
		if err := load(); err != nil {
			return settings{}, err
		}
	}
	return s, nil
}
