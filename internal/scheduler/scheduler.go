package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
)

// RunFunc performs one snapshot run.
type RunFunc func(ctx context.Context) error

// Scheduler repeats a snapshot run on a fixed interval. Runs never overlap:
// a run still in progress when the next one is due causes that tick to be
// skipped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	run       RunFunc
	interval  time.Duration
	logger    *slog.Logger
}

func New(interval time.Duration, run RunFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		run:       run,
		interval:  interval,
		logger:    logger,
	}
}

// Run executes the first run immediately and then one per interval until ctx
// is cancelled. Failed runs are logged and do not stop the schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var runs atomic.Int64
	_, err := s.scheduler.Every(s.interval).Do(func() {
		log := s.logger.With("run", runs.Add(1))
		log.Info("scheduled run starting")
		start := time.Now()
		if err := s.run(jobCtx); err != nil {
			log.Error("scheduled run failed", "err", err, "duration", time.Since(start).Round(time.Millisecond))
			return
		}
		log.Info("scheduled run finished", "duration", time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return fmt.Errorf("schedule run every %s: %w", s.interval, err)
	}

	s.logger.Info("watching", "every", s.interval)
	s.scheduler.StartAsync()

	<-ctx.Done()
	s.logger.Info("stopping scheduler")
	cancel()
	s.scheduler.Stop()
	return nil
}
