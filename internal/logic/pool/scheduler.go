package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sandboxlabs/warmpool-controller/internal/infra/shutdown"
)

// prewarmer is the slice of the pool surface the scheduler needs.
type prewarmer interface {
	Prewarm(ctx context.Context, count int) (int, error)
}

// cronNexter computes the next occurrence of a cron spec.
type cronNexter interface {
	NextAfter(spec, tz string, after time.Time) (time.Time, error)
}

// PrewarmScheduler warms the pool up on a cron schedule, e.g. ahead of
// business hours, independent of what the auto-scaler would do on its own.
type PrewarmScheduler struct {
	logger *slog.Logger
	pool   prewarmer
	cron   cronNexter
	spec   string
	tz     string
	count  int

	inShutdown atomic.Bool
	doneCh     chan struct{}
}

// NewPrewarmScheduler creates a scheduler for the given cron spec and burst count.
func NewPrewarmScheduler(
	logger *slog.Logger,
	pool prewarmer,
	cron cronNexter,
	spec string,
	tz string,
	count int,
) *PrewarmScheduler {
	return &PrewarmScheduler{
		logger: logger,
		pool:   pool,
		cron:   cron,
		spec:   spec,
		tz:     tz,
		count:  count,
		doneCh: make(chan struct{}),
	}
}

var _ shutdown.Shutdowner = (*PrewarmScheduler)(nil)

// Name returns the name of the scheduler component.
func (p *PrewarmScheduler) Name() string {
	return "prewarm-scheduler"
}

// Start starts the schedule loop in a goroutine.
func (p *PrewarmScheduler) Start(ctx context.Context) error {
	if p.inShutdown.Load() {
		p.logger.InfoContext(ctx, "prewarm scheduler is shutting down, skipping start")

		return nil
	}

	go p.run(ctx)

	return nil
}

// Shutdown waits for the schedule loop to exit.
func (p *PrewarmScheduler) Shutdown(ctx context.Context) error {
	if !p.inShutdown.CompareAndSwap(false, true) {
		p.logger.ErrorContext(ctx, "prewarm scheduler is already shutting down, skipping shutdown")

		return nil
	}

	defer func() {
		p.logger.InfoContext(ctx, "prewarm scheduler shut downed")
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before scheduler loop exited: %w", ctx.Err())
	case <-p.doneCh:
	}

	return nil
}

func (p *PrewarmScheduler) run(ctx context.Context) {
	defer close(p.doneCh)

	logger := p.logger.With("component", "prewarm-scheduler")

	for {
		next, err := p.cron.NextAfter(p.spec, p.tz, time.Now())
		if err != nil {
			// The spec was validated at config load; a parse failure here is a bug.
			logger.ErrorContext(ctx, "cron spec parse failed, stopping scheduler",
				"spec", p.spec,
				"reason", err,
			)

			return
		}

		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			logger.InfoContext(ctx, "terminating prewarm scheduler loop")

			return
		case <-timer.C:
		}

		created, err := p.pool.Prewarm(ctx, p.count)
		if err != nil {
			logger.ErrorContext(ctx, "scheduled prewarm failed", "reason", err)

			continue
		}

		logger.InfoContext(ctx, "scheduled prewarm completed",
			"requested", p.count,
			"created", created,
			"at", next,
		)
	}
}
