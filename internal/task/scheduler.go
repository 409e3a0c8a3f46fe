// Package task runs the background jobs that keep the card corpus healthy,
// currently the periodic archival sweep that retires long-mastered cards.
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Default scheduling values for the archival sweep.
const (
	DefaultSweepInterval = 1 * time.Hour
	DefaultSweepTimeout  = 5 * time.Minute
)

// Sweeper retires cards that have aged out of active scheduling.
// The review service satisfies this.
type Sweeper interface {
	RetireStaleCards(ctx context.Context) (int, error)
}

// SchedulerConfig holds the scheduler's settings.
type SchedulerConfig struct {
	// SweepInterval is how often the archival sweep runs.
	SweepInterval time.Duration

	// SweepTimeout bounds a single sweep run.
	SweepTimeout time.Duration
}

// Scheduler owns the recurring background jobs. Jobs run out of band of any
// request, so failures are logged and retried on the next tick rather than
// surfaced to a caller.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	config    SchedulerConfig
	logger    *slog.Logger
}

// NewScheduler creates a scheduler for the given sweeper.
func NewScheduler(sweeper Sweeper, cfg SchedulerConfig, log *slog.Logger) *Scheduler {
	if sweeper == nil {
		panic("sweeper cannot be nil")
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = DefaultSweepTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		config:    cfg,
		logger:    log.With(slog.String("component", "task_scheduler")),
	}
}

// Start registers the jobs and begins running them in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.config.SweepInterval).Do(s.runSweep); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("task scheduler started",
		slog.Duration("sweep_interval", s.config.SweepInterval))
	return nil
}

// Stop halts all scheduled jobs. A sweep already in flight finishes its run.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("task scheduler stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.SweepTimeout)
	defer cancel()

	retired, err := s.sweeper.RetireStaleCards(ctx)
	if err != nil {
		s.logger.Error("archival sweep failed",
			slog.String("error", err.Error()))
		return
	}

	if retired > 0 {
		s.logger.Info("archival sweep finished",
			slog.Int("retired", retired))
	}
}

// RunSweepNow triggers a single sweep outside the schedule, for operational
// use and tests.
func (s *Scheduler) RunSweepNow(ctx context.Context) (int, error) {
	return s.sweeper.RetireStaleCards(ctx)
}
