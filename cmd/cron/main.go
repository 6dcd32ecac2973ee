package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/internal/config"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/events"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/jobs"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/metrics"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/services"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/store"
)

func main() {
	var (
		jobName = flag.String("job", "", "Run specific job once (scheme_refresh, settlement_record)")
		once    = flag.Bool("once", false, "Run job once and exit")
	)
	flag.Parse()

	logger.SetupLogger()
	log := logger.New("cron-service")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Str("action", "config_failed").Msg("Invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("action", "store_open_failed").Msg("Failed to open settlement store")
	}
	defer st.Close()

	bus := events.NewBus(log)
	bus.Subscribe(events.EventSettlementRecorded, func(e events.Event) error {
		rec, ok := e.Payload.(store.SettlementRecord)
		if ok {
			log.WithPeriod(rec.PeriodID, rec.Status).Info().
				Str("verdict", string(rec.Verdict)).
				Msg("Settlement recorded")
		}
		return nil
	})
	svc := services.NewSchemeService(services.NewSchemeClient(cfg, log), bus, loc, log)

	lockManager, releaseLocks, err := jobs.NewLockManagerForStore(ctx, st)
	if err != nil {
		log.Fatal().Err(err).Str("action", "lock_manager_failed").Msg("Failed to set up job locks")
	}
	defer releaseLocks()

	jobManager := jobs.NewJobManager(&jobs.ManagerConfig{
		Location:    loc,
		JobTimeout:  5 * time.Minute,
		LockManager: lockManager,
	}, log)

	refreshJob := jobs.NewSchemeRefreshJob(svc, cfg.PollSchedule())
	if err := jobManager.RegisterJob(refreshJob); err != nil {
		log.Fatalf("Failed to register scheme refresh job: %v", err)
	}
	settlementJob := jobs.NewSettlementRecordJob(svc, st, bus, loc, cfg.Scheme.SettlementSchedule)
	if err := jobManager.RegisterJob(settlementJob); err != nil {
		log.Fatalf("Failed to register settlement record job: %v", err)
	}

	if *once && *jobName != "" {
		if err := jobManager.RunOnce(ctx, *jobName); err != nil {
			log.Fatalf("Failed to execute %s job: %v", *jobName, err)
		}
		log.Info().Str("job_name", *jobName).Msg("Job completed successfully")
		return
	}

	metricsServer := metrics.StartMetricsServer(cfg.Server.MetricsPort, st.Ping)
	jobManager.Start()
	log.Info().Int("jobs", len(jobManager.GetJobs())).Msg("Cron service started")

	<-ctx.Done()
	log.Info().Str("action", "shutdown").Msg("Shutting down cron service")

	jobManager.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
