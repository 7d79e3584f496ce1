// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for optional .env files and
// github.com/caarlos0/env/v11 for tag-driven parsing. Every package in the
// service owns a Config struct annotated with env and envDefault tags; the
// binary loads each one through Load, which parses a given type once and
// serves later calls from an in-process cache.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// ResetCache and ForceReload exist for tests that change the environment
// between loads.
package config
