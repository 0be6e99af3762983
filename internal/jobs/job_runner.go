package jobs

import (
	"context"
	"sync"
	"time"

	"goldloan-backend/internal/config"
	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/logger"
	"goldloan-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	interest service.InterestService
	config   *config.Config
	timeout  time.Duration

	mu         sync.Mutex
	running    bool
	lastResult *domain.BatchResult
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(interest service.InterestService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		interest: interest,
		config:   cfg,
		timeout:  30 * time.Minute,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// LastResult returns the outcome of the most recent completed interest run, if any.
func (jr *JobRunner) LastResult() *domain.BatchResult {
	jr.mu.Lock()
	defer jr.mu.Unlock()
	return jr.lastResult
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// ApplyDailyInterest posts today's interest to every due customer. A tick that
// fires while the previous run is still going is dropped.
func (jr *JobRunner) ApplyDailyInterest() {
	jr.mu.Lock()
	if jr.running {
		jr.mu.Unlock()
		logger.Warn("Previous daily interest run still in progress, skipping tick")
		return
	}
	jr.running = true
	jr.mu.Unlock()

	defer func() {
		jr.mu.Lock()
		jr.running = false
		jr.mu.Unlock()
	}()

	jr.runWithRecovery("ApplyDailyInterest", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()

		result, err := jr.interest.ApplyDailyInterestToAll(ctx, jr.interest.Today())
		if err != nil {
			logger.Error("Daily interest run failed", "error", err)
		}
		if result == nil {
			return
		}

		jr.mu.Lock()
		jr.lastResult = result
		jr.mu.Unlock()
		if result.Failed > 0 {
			logger.Warn("Daily interest run finished with failures", "runID", result.RunID, "failed", result.Failed)
		}
	})
}
