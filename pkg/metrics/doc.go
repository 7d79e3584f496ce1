// Package metrics exposes Prometheus collectors for the logging pipeline.
//
// Collectors are registered on the Registerer passed to New, so tests can use
// a private registry. A nil Registerer gets a fresh one that is never scraped.
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	svc := requestlog.NewService(cfg, sink, guard, requestlog.WithObserver(m))
//	router.Handle("/metrics", metrics.Handler(reg))
package metrics
