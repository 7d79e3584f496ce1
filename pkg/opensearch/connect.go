package opensearch

import (
	"context"
	"errors"

	"github.com/avast/retry-go/v5"
	"github.com/opensearch-project/opensearch-go/v2"
)

// Connect builds a client and waits until the cluster answers an info request.
func Connect(ctx context.Context, cfg Config) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	check := Healthcheck(client)
	err = retry.New(
		retry.Context(ctx),
		retry.Attempts(uint(max(cfg.RetryAttempts, 1))),
		retry.Delay(cfg.RetryInterval),
	).Do(func() error { return check(ctx) })
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return client, nil
}
