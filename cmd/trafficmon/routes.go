package main

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/trafficmon/pkg/admin"
	"github.com/dmitrymomot/trafficmon/pkg/clientip"
	"github.com/dmitrymomot/trafficmon/pkg/httpserver"
	"github.com/dmitrymomot/trafficmon/pkg/metrics"
	"github.com/dmitrymomot/trafficmon/pkg/nonce"
	"github.com/dmitrymomot/trafficmon/pkg/ratelimit"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// routes collects what the router serves.
type routes struct {
	cfg      settings
	log      *slog.Logger
	service  *requestlog.Service
	limiter  ratelimit.Limiter
	admin    *admin.API
	site     http.Handler
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	checks   map[string]httpserver.Check
}

func (rt routes) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(clientip.Middleware)

	r.Get("/health", httpserver.HealthHandler(rt.log, rt.cfg.App.HealthTimeout, rt.checks))
	if rt.cfg.App.Metrics && rt.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(rt.gatherer))
	}

	beacon := rt.service.BeaconHandler()
	if rt.limiter != nil {
		r.With(ratelimit.Middleware(rt.limiter, ratelimit.ByClientIP,
			ratelimit.WithObserver(rt.metrics),
			ratelimit.WithLogger(rt.log),
		)).Post(rt.cfg.Traffic.BeaconPath, beacon)
	} else {
		r.Post(rt.cfg.Traffic.BeaconPath, beacon)
	}

	if rt.cfg.Traffic.ScriptPath != "" {
		r.Get(rt.cfg.Traffic.ScriptPath, rt.service.ScriptHandler())
	}

	if rt.admin != nil {
		r.Mount(rt.cfg.Admin.Prefix, rt.admin.Router())
	}

	r.With(nonce.Middleware, rt.service.Middleware).Handle("/*", rt.site)
	return r
}

// siteHandler proxies to upstream, or serves dir when upstream is empty.
// Proxied requests carry the page nonce in the nonce.Header request header.
func siteHandler(upstream, dir string) (http.Handler, error) {
	if upstream == "" {
		return http.FileServer(http.Dir(dir)), nil
	}
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, err
	}
	return httputil.NewSingleHostReverseProxy(target), nil
}

// headerRole reads the actor role set by an authenticating proxy in front of
// the site.
func headerRole(name string) requestlog.RoleProvider {
	return func(r *http.Request) string {
		return strings.ToLower(strings.TrimSpace(r.Header.Get(name)))
	}
}
