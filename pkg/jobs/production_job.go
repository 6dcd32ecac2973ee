package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
)

// ProductionJob runs a job under its lock, retrying transient failures
type ProductionJob struct {
	job         Job
	lockManager JobLockManager
	config      ProductionJobConfig
	logger      *logger.Logger
}

// ProductionJobConfig holds the lock and retry policy of a ProductionJob
type ProductionJobConfig struct {
	LockTimeout  time.Duration // zero tries the lock once
	SkipIfLocked bool
	MaxRetries   int
	RetryBackoff time.Duration // doubled after each attempt
}

func DefaultProductionJobConfig() *ProductionJobConfig {
	return &ProductionJobConfig{
		SkipIfLocked: true,
		MaxRetries:   2,
		RetryBackoff: time.Second,
	}
}

func NewProductionJob(job Job, lockManager JobLockManager, config *ProductionJobConfig) *ProductionJob {
	if config == nil {
		config = DefaultProductionJobConfig()
	}
	return &ProductionJob{
		job:         job,
		lockManager: lockManager,
		config:      *config,
		logger:      logger.New("production-job"),
	}
}

func (p *ProductionJob) Name() string {
	return p.job.Name()
}

func (p *ProductionJob) Schedule() string {
	return p.job.Schedule()
}

func (p *ProductionJob) Execute(ctx context.Context) error {
	jobName := p.job.Name()
	guard := NewLockGuard(p.lockManager, jobName)

	acquired, err := guard.Acquire(ctx, p.config.LockTimeout)
	if err != nil {
		return fmt.Errorf("failed to acquire lock for job %s: %w", jobName, err)
	}
	if !acquired {
		if p.config.SkipIfLocked {
			p.logger.Info().
				Str("job_name", jobName).
				Str("action", "job_skipped_locked").
				Msg("Job skipped, another instance is running")
			return nil
		}
		return fmt.Errorf("could not acquire lock for job %s", jobName)
	}

	defer func() {
		// release even if ctx expired during the run
		if err := guard.Release(context.WithoutCancel(ctx)); err != nil {
			p.logger.Error().Err(err).Str("job_name", jobName).Msg("Failed to release job lock")
		}
	}()

	return p.executeWithRetry(ctx)
}

func (p *ProductionJob) executeWithRetry(ctx context.Context) error {
	backoff := p.config.RetryBackoff
	var err error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Warn().
				Err(err).
				Str("job_name", p.job.Name()).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Msg("Retrying job after transient failure")

			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err = p.job.Execute(ctx); err == nil || !isTransient(err) {
			return err
		}
	}
	return err
}

// isTransient reports whether err says it is worth retrying
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var t interface{ Temporary() bool }
	return errors.As(err, &t) && t.Temporary()
}
