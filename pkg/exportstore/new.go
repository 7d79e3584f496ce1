package exportstore

import "context"

// New builds the backend selected by cfg.Driver. baseURL is used by the
// local backend when cfg.BaseURL is empty.
func New(ctx context.Context, cfg Config, baseURL string, opts ...S3Option) (Store, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		return NewLocal(cfg.Dir, baseURL)
	case DriverS3:
		return NewS3(ctx, cfg.S3, opts...)
	default:
		return nil, ErrUnknownDriver
	}
}
