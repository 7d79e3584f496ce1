package logstore

import "time"

// Storage drivers.
const (
	DriverPostgres   = "postgres"
	DriverSQLite     = "sqlite"
	DriverMongo      = "mongo"
	DriverOpenSearch = "opensearch"
	DriverMemory     = "memory"
)

// Config selects the backend and the decorators wrapped around it.
type Config struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`

	Async          bool          `env:"STORAGE_ASYNC" envDefault:"false"`
	BufferSize     int           `env:"STORAGE_BUFFER_SIZE" envDefault:"1000"`
	BatchSize      int           `env:"STORAGE_BATCH_SIZE" envDefault:"100"`
	BatchTimeout   time.Duration `env:"STORAGE_BATCH_TIMEOUT" envDefault:"500ms"`
	StorageTimeout time.Duration `env:"STORAGE_WRITE_TIMEOUT" envDefault:"5s"`

	Breaker         bool          `env:"STORAGE_BREAKER" envDefault:"true"`
	BreakerFailures uint32        `env:"STORAGE_BREAKER_FAILURES" envDefault:"5"`
	BreakerTimeout  time.Duration `env:"STORAGE_BREAKER_TIMEOUT" envDefault:"30s"`
}
