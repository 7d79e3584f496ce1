// Package logger builds the service's *slog.Logger and keeps attribute names
// consistent across packages.
//
// New assembles a text or JSON slog.Handler from functional options and wraps it
// with a decorator that runs ContextExtractor callbacks on every record, so
// request-scoped values such as the page nonce or the request id are attached
// without threading them through every call.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "trafficmon"),
//		logger.WithLevelName(cfg.Level),
//		logger.WithContextExtractors(nonce.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "record stored",
//		logger.Origin("direct"),
//		logger.ClientIP(ip),
//		logger.Duration(time.Since(start)),
//	)
//
// Attribute helpers that take an error or an optional value return an empty
// slog.Attr for nil input, which slog drops, so callers never need a nil check:
//
//	log.Warn("dedup store unavailable", logger.Error(err))
package logger
