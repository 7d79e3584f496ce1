// Package pg connects to PostgreSQL with pgx/v5 and applies goose migrations.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, "postgres", cfg, log); err != nil {
//		return err
//	}
//
// Connect retries with exponential backoff. Healthcheck returns a probe
// suitable for httpserver.HealthHandler.
package pg
