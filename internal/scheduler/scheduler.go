// Package scheduler runs the daily maintenance job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/kevinchw/kevinbot/internal/config"
	"github.com/kevinchw/kevinbot/internal/maintenance"
)

// Scheduler manages the in-process maintenance schedule using gocron.
type Scheduler struct {
	scheduler gocron.Scheduler
	runner    *maintenance.Runner
	logger    *slog.Logger
	cfg       config.SchedulerConfig
	mu        sync.Mutex
	running   bool
}

// New creates a Scheduler. The maintenance job is registered on Start.
func New(cfg config.SchedulerConfig, runner *maintenance.Runner, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		runner:    runner,
		logger:    logger.With("component", "scheduler"),
		cfg:       cfg,
	}, nil
}

// Start schedules the maintenance job and starts the scheduler. A disabled
// configuration is a no-op rather than an error.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if !s.cfg.Enabled {
		s.logger.Info("Scheduler disabled, skipping maintenance schedule")
		return nil
	}
	if s.cfg.Cron == "" {
		return fmt.Errorf("scheduler enabled but cron expression is empty")
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(s.cfg.Cron, false),
		gocron.NewTask(func(ctx context.Context) {
			s.logger.Info("Running scheduled maintenance")
			start := time.Now()
			if _, taskErr := s.runner.Run(ctx); taskErr != nil {
				s.logger.Error("Scheduled maintenance failed", "error", taskErr)
			}
			s.logger.Info("Finished scheduled maintenance", "duration", time.Since(start))
		}, context.Background()),
		gocron.WithName("maintenance"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "cron", s.cfg.Cron)
	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully")
	}
	s.running = false
	return err
}
