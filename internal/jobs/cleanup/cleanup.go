package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Pruner deletes rows older than cutoff and reports how many went away.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PrunerFunc adapts a plain function to Pruner.
type PrunerFunc func(ctx context.Context, cutoff time.Time) (int64, error)

func (f PrunerFunc) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f(ctx, cutoff)
}

type target struct {
	name      string
	pruner    Pruner
	retention time.Duration
}

// Job applies retention windows to stale device tokens and analytics events.
type Job struct {
	targets []target
	now     func() time.Time
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		now:    time.Now,
		logger: logger,
	}
}

// Attach registers a pruner. Non-positive retention disables it.
func (j *Job) Attach(name string, pruner Pruner, retention time.Duration) {
	if pruner == nil || retention <= 0 {
		return
	}
	j.targets = append(j.targets, target{name: name, pruner: pruner, retention: retention})
}

// Run prunes every target. A failing target does not stop the others; all
// failures are joined into the returned error.
func (j *Job) Run(ctx context.Context) error {
	now := j.now()
	var errs []error
	for _, t := range j.targets {
		rows, err := t.pruner.DeleteOlderThan(ctx, now.Add(-t.retention))
		if err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", t.name, err))
			continue
		}
		if rows > 0 {
			j.logger.Info("cleanup completed", zap.String("target", t.name), zap.Int64("deleted", rows))
		}
	}
	return errors.Join(errs...)
}

// Loop runs the job immediately and then on every tick until ctx ends.
// Failed runs are logged; the loop keeps going.
func (j *Job) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	j.runLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *Job) runLogged(ctx context.Context) {
	if err := j.Run(ctx); err != nil {
		j.logger.Warn("cleanup run failed", zap.Error(err))
	}
}
