// Package httpserver runs an http.Handler with configured timeouts and
// graceful shutdown.
//
// Run blocks until the parent context is cancelled, the process receives
// SIGINT or SIGTERM, or Shutdown is called. Stop hooks run after in-flight
// requests drain, which is where buffered log writers are flushed.
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(func() { _ = writer.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthHandler aggregates dependency checks into one JSON readiness probe.
package httpserver
