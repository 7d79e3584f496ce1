package retention

import "time"

// Config controls the purge job. A zero MaxAge disables it.
type Config struct {
	MaxAge     time.Duration `env:"RETENTION_MAX_AGE" envDefault:"720h"`
	Schedule   string        `env:"RETENTION_SCHEDULE" envDefault:"@hourly"`
	Attempts   uint          `env:"RETENTION_ATTEMPTS" envDefault:"3"`
	RetryDelay time.Duration `env:"RETENTION_RETRY_DELAY" envDefault:"1s"`
	Timeout    time.Duration `env:"RETENTION_TIMEOUT" envDefault:"1m"`
}
