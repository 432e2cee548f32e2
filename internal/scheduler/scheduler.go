package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/notexe/event-reminders/internal/config"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context)

// Scheduler runs a job on a fixed interval taken from an injected clock.
type Scheduler struct {
	job      Job
	interval time.Duration
	enabled  bool
	clock    clockwork.Clock
	log      logrus.FieldLogger
}

// New creates a Scheduler for job using the interval and enabled flag from cfg.
func New(job Job, cfg config.SchedulerConfig, clock clockwork.Clock, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		job:      job,
		interval: time.Duration(cfg.Interval) * time.Second,
		enabled:  cfg.Enabled,
		clock:    clock,
		log:      log.WithField("component", "scheduler"),
	}
}

// Run blocks and runs the job on interval + immediately on start.
// It exits when ctx is cancelled. A disabled scheduler returns at once.
//
// The job runs on this goroutine, so runs never overlap; ticks that arrive
// while a run is in progress are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.enabled {
		s.log.Info("Disabled, reminder checks will not run")
		return nil
	}
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.log.Infof("Started. Interval: %s", s.interval)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Shutting down...")
			return nil
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.log.Debug("Checking reminders...")
	s.job(ctx)
}
