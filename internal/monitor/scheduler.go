package monitor

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler runs the price-check sweep on a fixed interval. One run executes
// immediately on start.
type Scheduler struct {
	checker  *Checker
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(checker *Checker, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		checker:  checker,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start blocks until ctx is cancelled. Sweep errors are logged and the loop
// keeps going; only cancellation stops it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.checker.Run(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("price check sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.checker.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("price check sweep failed", "error", err)
			}
		}
	}
}
