package geoip

// Config configures the country lookup. An empty Path disables it.
type Config struct {
	Path           string `env:"GEOIP_DB_PATH"`
	ReloadSchedule string `env:"GEOIP_RELOAD_SCHEDULE" envDefault:"@daily"`
}
