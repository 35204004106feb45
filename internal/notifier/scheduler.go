package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the background jobs on fixed UTC schedules.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New(cron.WithLocation(time.UTC))}
}

// Add registers run under spec. Errors from run are logged.
func (s *Scheduler) Add(name string, spec string, run func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := run(context.Background()); err != nil {
			logger.Error("Scheduled job failed", "job", name, "error", err)
			return
		}
		logger.Info("Scheduled job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("register %s job: %w", name, err)
	}
	logger.Info("Registered scheduled job", "job", name, "schedule", spec)
	return nil
}

// RegisterNotifier adds the reminder and digest jobs.
func (s *Scheduler) RegisterNotifier(n *Notifier) error {
	if err := s.Add(kindReminder, config.DeadlineReminderCron, func(ctx context.Context) error {
		_, err := n.DeadlineReminders(ctx, time.Now())
		return err
	}); err != nil {
		return err
	}
	return s.Add(kindDigest, config.WeeklyDigestCron, func(ctx context.Context) error {
		_, err := n.WeeklyDigest(ctx, time.Now())
		return err
	})
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
