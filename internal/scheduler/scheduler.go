package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// Backfiller inserts missing preference rows and reports how many it added.
type Backfiller interface {
	Backfill(ctx context.Context) (int64, error)
}

// Scheduler runs the backfill sweep on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	job    Backfiller
	logger *slog.Logger
}

// New registers the sweep under schedule, a standard five-field cron spec or
// a descriptor such as "@hourly" or "@every 30m".
func New(job Backfiller, schedule string, logger *slog.Logger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		job:    job,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid backfill schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("backfill scheduler started")
}

// Stop prevents new runs and waits for a running one to finish or for ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("backfill scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.job.Backfill(ctx)
	if err != nil {
		s.logger.Error("backfill sweep failed", "error", err)
		return
	}
	s.logger.Debug("backfill sweep finished", "inserted", n, "duration", time.Since(start))
}
