package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
)

// ManagerConfig configures the cron job manager
type ManagerConfig struct {
	Location    *time.Location
	JobTimeout  time.Duration
	LockManager JobLockManager // nil disables lock wrapping
	JobConfig   *ProductionJobConfig
}

type cronJobManager struct {
	cron        *cron.Cron
	logger      *logger.Logger
	timeout     time.Duration
	lockManager JobLockManager
	jobConfig   *ProductionJobConfig

	mu   sync.Mutex
	jobs []Job
}

// NewJobManager creates a new job manager
func NewJobManager(cfg *ManagerConfig, log *logger.Logger) JobManager {
	if cfg == nil {
		cfg = &ManagerConfig{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if log == nil {
		log = logger.New("job-manager")
	}

	return &cronJobManager{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:      log,
		timeout:     cfg.JobTimeout,
		lockManager: cfg.LockManager,
		jobConfig:   cfg.JobConfig,
		jobs:        make([]Job, 0),
	}
}

func (m *cronJobManager) RegisterJob(job Job) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	finalJob := job
	if m.lockManager != nil {
		if _, isProduction := job.(*ProductionJob); !isProduction {
			finalJob = NewProductionJob(job, m.lockManager, m.jobConfig)
		}
	}

	m.logger.Info().
		Str("action", "register_job").
		Str("job_name", finalJob.Name()).
		Str("schedule", finalJob.Schedule()).
		Bool("locking_enabled", m.lockManager != nil).
		Msg("Registering job")

	_, err := m.cron.AddFunc(finalJob.Schedule(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		_ = m.run(ctx, finalJob)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", finalJob.Name(), err)
	}

	m.mu.Lock()
	m.jobs = append(m.jobs, finalJob)
	m.mu.Unlock()
	return nil
}

func (m *cronJobManager) run(ctx context.Context, job Job) error {
	jobLogger := m.logger.WithRequestID(uuid.New().String()).WithJob(job.Name())
	ctx = jobLogger.ToContext(ctx)

	jobLogger.LogJobStart(job.Name(), job.Schedule())
	start := time.Now()

	if err := job.Execute(ctx); err != nil {
		jobLogger.Error().
			Err(err).
			Str("action", "job_failed").
			Dur("duration", time.Since(start)).
			Msg("Job execution failed")
		return err
	}

	jobLogger.LogJobComplete(job.Name(), time.Since(start), 0, 0)
	return nil
}

func (m *cronJobManager) RunOnce(ctx context.Context, name string) error {
	for _, job := range m.GetJobs() {
		if job.Name() == name {
			ctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			return m.run(ctx, job)
		}
	}
	return fmt.Errorf("job %s is not registered", name)
}

func (m *cronJobManager) Start() {
	m.logger.Info().
		Str("action", "manager_start").
		Int("jobs", len(m.GetJobs())).
		Msg("Starting job manager")
	m.cron.Start()
}

func (m *cronJobManager) Stop() {
	m.logger.Info().Str("action", "manager_stop").Msg("Stopping job manager")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info().Str("action", "manager_stopped").Msg("Job manager stopped")
}

func (m *cronJobManager) GetJobs() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Job(nil), m.jobs...)
}
