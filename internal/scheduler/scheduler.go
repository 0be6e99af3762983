package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"goldloan-backend/internal/jobs"
	"goldloan-backend/internal/logger"
)

// DefaultDailyInterestSpec fires at 01:00 in the accrual timezone.
const DefaultDailyInterestSpec = "0 0 1 * * *"

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
	loc  *time.Location
}

// NewScheduler creates a scheduler that fires in loc, the accrual timezone, so
// "midnight" is the business's midnight rather than the host's.
func NewScheduler(jobRunner *jobs.JobRunner, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
		loc:  loc,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	spec := s.jobs.Config().Scheduler.ApplyDailyInterest
	if spec == "" {
		spec = DefaultDailyInterestSpec
	}

	if _, err := s.cron.AddFunc(spec, s.jobs.ApplyDailyInterest); err != nil {
		logger.Error("Failed to register ApplyDailyInterest job", "spec", spec, "error", err)
		return err
	}

	logger.Info("All cron jobs registered successfully", "applyDailyInterest", spec)
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for a running job to finish
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// NextRun reports when the daily interest job fires next.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if next := entries[0].Next; !next.IsZero() {
		return next
	}
	return entries[0].Schedule.Next(time.Now().In(s.loc))
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
