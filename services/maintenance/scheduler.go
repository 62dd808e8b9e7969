package maintenance

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler enqueues the daily sweep shortly after midnight. The actual
// work runs on the maintenance queue, so a worker restart never skips a
// day as long as the enqueue landed.
type Scheduler struct {
	service *Service
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(svc *Service) *Scheduler {
	return &Scheduler{service: svc, done: make(chan struct{})}
}

func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// The start context carries fx's start deadline; the loop
			// must run on a process-lifetime context or it dies once
			// that deadline fires.
			ctx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			go s.run(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.cancel()
			select {
			case <-s.done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	zap.L().Info("started campaign expiry scheduler")

	for {
		now := time.Now()
		next := nextRunTime(now, 0, 15)

		sleepDuration := next.Sub(now)
		zap.L().Info("next sweep scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", sleepDuration),
		)
		select {
		case <-time.After(sleepDuration):
			s.runDaily(ctx)
		case <-ctx.Done():
			zap.L().Warn("expiry scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) runDaily(ctx context.Context) {
	start := time.Now()
	if err := s.service.EnqueueSweep(ctx, start); err != nil {
		zap.L().Error("failed to enqueue expiry sweep", zap.Error(err))
		return
	}
	zap.L().Info("enqueued expiry sweep", zap.Duration("duration", time.Since(start)))
}

func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
