package exportstore

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

type Config struct {
	Driver  string `env:"EXPORT_DRIVER" envDefault:"local"`
	Dir     string `env:"EXPORT_DIR" envDefault:"data/exports"`
	BaseURL string `env:"EXPORT_BASE_URL"`

	S3 S3Config `envPrefix:"EXPORT_S3_"`
}

// S3Config configures the S3 backend. Credentials fall back to the default
// AWS chain when AccessKeyID is empty.
type S3Config struct {
	Bucket         string `env:"BUCKET"`
	Region         string `env:"REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"ACCESS_KEY_ID"`
	SecretKey      string `env:"SECRET_KEY"`
	Endpoint       string `env:"ENDPOINT"`
	Prefix         string `env:"PREFIX" envDefault:"exports/"`
	BaseURL        string `env:"BASE_URL"`
	ForcePathStyle bool   `env:"FORCE_PATH_STYLE" envDefault:"false"`
}
