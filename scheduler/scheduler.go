// Package scheduler runs the periodic background jobs of the bot.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// every runs job immediately and then on each tick until ctx is done.
// Job errors are logged and never stop the loop.
func every(ctx context.Context, name string, interval time.Duration, job func(context.Context) (int, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := job(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			slog.Error("scheduler: Job failed", "job", name, "processed", n, "error", err)
		case n > 0:
			slog.Info("scheduler: Job finished", "job", name, "processed", n)
		}

		select {
		case <-ctx.Done():
			slog.Debug("scheduler: Job stopped", "job", name)
			return
		case <-ticker.C:
		}
	}
}
