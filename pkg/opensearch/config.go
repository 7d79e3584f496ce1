package opensearch

import "time"

type Config struct {
	Addresses     []string      `env:"OPENSEARCH_ADDRESSES,required" envSeparator:","`
	Username      string        `env:"OPENSEARCH_USERNAME"`
	Password      string        `env:"OPENSEARCH_PASSWORD"`
	Index         string        `env:"OPENSEARCH_INDEX" envDefault:"trafficmon-requests"`
	MaxRetries    int           `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	RetryAttempts int           `env:"OPENSEARCH_CONNECT_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"OPENSEARCH_CONNECT_INTERVAL" envDefault:"2s"`
}
