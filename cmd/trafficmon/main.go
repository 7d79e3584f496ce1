// Command trafficmon serves or proxies a site and records the requests it
// receives, including page views reported by beacons from cached pages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/trafficmon/pkg/admin"
	"github.com/dmitrymomot/trafficmon/pkg/config"
	"github.com/dmitrymomot/trafficmon/pkg/dedup"
	"github.com/dmitrymomot/trafficmon/pkg/exportstore"
	"github.com/dmitrymomot/trafficmon/pkg/geoip"
	"github.com/dmitrymomot/trafficmon/pkg/httpserver"
	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/metrics"
	"github.com/dmitrymomot/trafficmon/pkg/nonce"
	"github.com/dmitrymomot/trafficmon/pkg/ratelimit"
	"github.com/dmitrymomot/trafficmon/pkg/redis"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
	"github.com/dmitrymomot/trafficmon/pkg/retention"
)

func main() {
	cfg, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.App.Env, cfg.App.Name),
		logger.WithConfig(cfg.Log),
		logger.WithContextExtractors(nonce.LoggerExtractor()),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("trafficmon stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg settings, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	metrics.RegisterRuntime(reg)
	m := metrics.New(reg)

	store, err := openStorage(ctx, cfg.Storage, log, m)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	stopCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := store.Close(stopCtx); err != nil {
			log.Error("failed to close storage", logger.Component("storage"), logger.Error(err))
		}
	}()

	guard, err := newGuard(ctx, cfg.Dedup, store)
	if err != nil {
		return fmt.Errorf("dedup store: %w", err)
	}

	extractorOpts := []requestlog.ExtractorOption{
		requestlog.WithDefaultRole(cfg.Traffic.DefaultRole),
		requestlog.WithRoleProvider(headerRole(cfg.App.RoleHeader)),
	}
	if cfg.GeoIP.Path != "" {
		geo, err := geoip.New(cfg.GeoIP, geoip.WithLogger(log))
		if err != nil {
			return fmt.Errorf("geoip: %w", err)
		}
		defer geo.Stop()
		extractorOpts = append(extractorOpts, requestlog.WithCountryLookup(geo))
	}

	service := requestlog.NewService(cfg.Traffic, store.store, guard,
		requestlog.WithExtractor(requestlog.NewExtractor(extractorOpts...)),
		requestlog.WithObserver(m),
		requestlog.WithLogger(log),
	)

	purge, err := retention.New(cfg.Retention, store.direct,
		retention.WithLogger(log),
		retention.WithObserver(m),
	)
	if err != nil {
		return fmt.Errorf("retention: %w", err)
	}
	purge.Start()
	defer func() { _ = purge.Stop(stopCtx) }()

	limiter, err := ratelimit.NewTokenBucket(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	defer limiter.Close()

	var api *admin.API
	if cfg.Admin.Enabled() {
		exports, err := exportstore.New(ctx, cfg.Export, cfg.Admin.Prefix+"/exports/")
		if err != nil {
			return fmt.Errorf("export store: %w", err)
		}
		api = admin.New(cfg.Admin, store.direct, exports, admin.WithLogger(log))
	} else {
		log.Warn("admin api disabled: ADMIN_PASSWORD_HASH is not set", logger.Component("admin"))
	}

	site, err := siteHandler(cfg.App.UpstreamURL, cfg.App.StaticDir)
	if err != nil {
		return fmt.Errorf("upstream: %w", err)
	}

	router := routes{
		cfg:      cfg,
		log:      log,
		service:  service,
		limiter:  limiter,
		admin:    api,
		site:     site,
		metrics:  m,
		gatherer: reg,
		checks:   store.checks,
	}.handler()

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

// newGuard builds the dedup guard. The redis driver connects with the redis
// package settings and registers its healthcheck.
func newGuard(ctx context.Context, cfg dedup.Config, s *storage) (*dedup.Guard, error) {
	var client dedup.SetNXer
	if cfg.Driver == "redis" {
		var rc redis.Config
		if err := config.Load(&rc); err != nil {
			return nil, err
		}
		rdb, err := redis.Connect(ctx, rc)
		if err != nil {
			return nil, err
		}
		s.close = append(s.close, func(context.Context) error { return rdb.Close() })
		s.checks["redis"] = redis.Healthcheck(rdb)
		client = rdb
	}

	store, err := dedup.NewStore(cfg, client)
	if err != nil {
		return nil, err
	}
	if mem, ok := store.(*dedup.MemoryStore); ok {
		s.close = append(s.close, func(context.Context) error { mem.Close(); return nil })
	}
	return dedup.New(store, dedup.WithTTL(cfg.TTL)), nil
}
