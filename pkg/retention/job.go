package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// Observer receives the result of every purge run.
type Observer interface {
	ObservePurge(n int64, err error)
}

type noopObserver struct{}

func (noopObserver) ObservePurge(int64, error) {}

type Job struct {
	cfg    Config
	purger requestlog.Purger
	cron   *cron.Cron
	now    func() time.Time
	log    *slog.Logger
	obs    Observer
}

type Option func(*Job)

func WithLogger(l *slog.Logger) Option {
	return func(j *Job) {
		if l != nil {
			j.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(j *Job) {
		if o != nil {
			j.obs = o
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(j *Job) {
		if now != nil {
			j.now = now
		}
	}
}

// New validates the schedule. The job does nothing until Start.
func New(cfg Config, purger requestlog.Purger, opts ...Option) (*Job, error) {
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}

	j := &Job{
		cfg:    cfg,
		purger: purger,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		now:    time.Now,
		log:    logger.Discard(),
		obs:    noopObserver{},
	}
	for _, opt := range opts {
		opt(j)
	}

	if cfg.MaxAge > 0 {
		if _, err := j.cron.AddFunc(cfg.Schedule, j.run); err != nil {
			return nil, errors.Join(ErrInvalidSchedule, err)
		}
	}
	return j, nil
}

// Enabled reports whether a retention window is configured.
func (j *Job) Enabled() bool { return j.cfg.MaxAge > 0 }

func (j *Job) Start() {
	if j.Enabled() {
		j.cron.Start()
	}
}

// Stop waits for a running purge to finish or ctx to expire.
func (j *Job) Stop(ctx context.Context) error {
	select {
	case <-j.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Job) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.Timeout)
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

// RunOnce deletes records captured before now minus MaxAge.
func (j *Job) RunOnce(ctx context.Context) (int64, error) {
	if !j.Enabled() {
		return 0, nil
	}
	cutoff := j.now().Add(-j.cfg.MaxAge)

	var deleted int64
	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(j.cfg.Attempts),
		retry.Delay(j.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
	).Do(func() error {
		n, err := j.purger.DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	j.obs.ObservePurge(deleted, err)

	if err != nil {
		j.log.ErrorContext(ctx, "retention purge failed",
			logger.Component("retention"),
			slog.Time("cutoff", cutoff),
			logger.Error(err),
		)
		return 0, errors.Join(ErrPurgeFailed, err)
	}

	j.log.InfoContext(ctx, "retention purge finished",
		logger.Component("retention"),
		slog.Time("cutoff", cutoff),
		logger.Count(deleted),
	)
	return deleted, nil
}
