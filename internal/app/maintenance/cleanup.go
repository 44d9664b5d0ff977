package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/hazemkhaled/digimarket/internal/auth"
	"github.com/hazemkhaled/digimarket/internal/services"
	"github.com/hazemkhaled/digimarket/pkg/logger"
)

const (
	defaultSessionSpec = "@hourly"
	defaultResetSpec   = "@daily"
)

// Cleaner coordinates background maintenance tasks: purging expired sessions
// and removing stale password reset codes.
type Cleaner struct {
	sessions *iauth.SessionService
	resets   *services.PasswordResetService
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger

	sessionSchedule string
	resetSchedule   string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithResetSchedule overrides the cron specification for reset code cleanup.
func WithResetSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.resetSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency
// results in the corresponding cleanup job being skipped.
func NewCleaner(sessions *iauth.SessionService, resets *services.PasswordResetService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:        sessions,
		resets:          resets,
		now:             time.Now,
		sessionSchedule: defaultSessionSpec,
		resetSchedule:   defaultResetSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if c.sessions == nil && c.resets == nil {
		return nil
	}

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			ctx := context.Background()
			if removed, err := c.sessions.CleanupExpired(ctx); err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
			} else if removed > 0 {
				c.log.Info("expired sessions removed", zap.Int64("count", removed))
			}
		}); err != nil {
			return err
		}
	}

	if c.resets != nil {
		if _, err := c.cron.AddFunc(c.resetSchedule, func() {
			ctx := context.Background()
			if removed, err := c.resets.PurgeExpired(ctx); err != nil {
				c.log.Warn("reset code cleanup failed", zap.Error(err))
			} else if removed > 0 {
				c.log.Info("expired reset codes removed", zap.Int64("count", removed))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.resets != nil {
		if _, err := c.resets.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
