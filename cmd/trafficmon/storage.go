package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/trafficmon/pkg/config"
	"github.com/dmitrymomot/trafficmon/pkg/httpserver"
	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/logstore"
	"github.com/dmitrymomot/trafficmon/pkg/metrics"
	"github.com/dmitrymomot/trafficmon/pkg/mongo"
	"github.com/dmitrymomot/trafficmon/pkg/opensearch"
	"github.com/dmitrymomot/trafficmon/pkg/pg"
	"github.com/dmitrymomot/trafficmon/pkg/sqlite"
)

var errUnknownStorage = errors.New("unknown storage driver")

// storage is the configured sink with its decorators applied.
type storage struct {
	// store is the outermost layer and the one handed to the pipeline.
	store  logstore.Store
	// direct skips the async buffer. The admin API and retention use it.
	direct logstore.Store
	async  *logstore.Async
	checks map[string]httpserver.Check
	close  []func(context.Context) error
}

// Close flushes buffered records first, then releases connections.
func (s *storage) Close(ctx context.Context) error {
	var errs []error
	if s.async != nil {
		errs = append(errs, s.async.Close(ctx))
	}
	for i := len(s.close) - 1; i >= 0; i-- {
		errs = append(errs, s.close[i](ctx))
	}
	return errors.Join(errs...)
}

func openStorage(ctx context.Context, cfg logstore.Config, log *slog.Logger, m *metrics.Metrics) (*storage, error) {
	s := &storage{checks: make(map[string]httpserver.Check)}

	base, err := openBackend(ctx, cfg.Driver, s, log)
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	s.direct = base
	if cfg.Breaker {
		s.direct = logstore.NewBreaker(base, logstore.BreakerSettings{
			Name:     cfg.Driver,
			Failures: cfg.BreakerFailures,
			Timeout:  cfg.BreakerTimeout,
			Logger:   log,
			Observer: m,
		})
	}

	s.store = s.direct
	if cfg.Async {
		s.async = logstore.NewAsync(s.direct, logstore.AsyncOptions{
			BufferSize:     cfg.BufferSize,
			BatchSize:      cfg.BatchSize,
			BatchTimeout:   cfg.BatchTimeout,
			StorageTimeout: cfg.StorageTimeout,
		},
			logstore.WithAsyncLogger(log),
			logstore.WithAsyncObserver(m),
		)
		s.store = s.async
	}

	log.InfoContext(ctx, "storage ready",
		logger.Component("storage"),
		slog.String("driver", cfg.Driver),
		slog.Bool("async", cfg.Async),
		slog.Bool("breaker", cfg.Breaker),
	)
	return s, nil
}

func openBackend(ctx context.Context, driver string, s *storage, log *slog.Logger) (logstore.Store, error) {
	switch driver {
	case logstore.DriverPostgres:
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.close = append(s.close, func(context.Context) error { pool.Close(); return nil })
		if err := pg.Migrate(ctx, pool, logstore.Migrations, logstore.PostgresMigrations, cfg, log); err != nil {
			return nil, err
		}
		s.checks["postgres"] = pg.Healthcheck(pool)
		return logstore.NewPostgres(pool), nil

	case logstore.DriverSQLite, "":
		var cfg sqlite.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		db, err := sqlite.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.close = append(s.close, func(context.Context) error { return db.Close() })
		if err := sqlite.Migrate(ctx, db, logstore.Migrations, logstore.SQLiteMigrations, cfg, log); err != nil {
			return nil, err
		}
		s.checks["sqlite"] = sqlite.Healthcheck(db)
		return logstore.NewSQLite(db), nil

	case logstore.DriverMongo:
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		db, err := mongo.ConnectDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.close = append(s.close, db.Client().Disconnect)
		store := logstore.NewMongo(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		s.checks["mongo"] = mongo.Healthcheck(db.Client())
		return store, nil

	case logstore.DriverOpenSearch:
		var cfg opensearch.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := opensearch.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := logstore.NewOpenSearch(client, cfg.Index)
		if err := store.EnsureIndex(ctx); err != nil {
			return nil, err
		}
		s.checks["opensearch"] = opensearch.Healthcheck(client)
		return store, nil

	case logstore.DriverMemory:
		return logstore.NewMemory(), nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownStorage, driver)
	}
}
