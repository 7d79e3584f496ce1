package admin

// Config holds the admin credentials. PasswordHash is a bcrypt hash; the
// API is not mounted when it is empty.
type Config struct {
	Prefix       string `env:"ADMIN_API_PREFIX" envDefault:"/admin/api"`
	Username     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	PasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	Realm        string `env:"ADMIN_REALM" envDefault:"trafficmon"`
}

// Enabled reports whether credentials are configured.
func (c Config) Enabled() bool { return c.PasswordHash != "" }
