package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/internal/config"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/countdown"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/events"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/handlers/stream"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/jobs"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/server"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/services"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/store"
)

func main() {
	logger.SetupLogger()
	log := logger.New("api-service")

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
	svc := services.NewSchemeService(services.NewSchemeClient(cfg, log), bus, loc, log)

	// countdown ticks are republished for stream clients
	session := countdown.NewSession(countdown.NewDriver(cfg.Scheme.TickInterval), func(snap countdown.Snapshot) {
		bus.Publish(events.New(events.EventCountdownTick, svc.State().PeriodID(), snap))
	})
	resetCountdown := func(events.Event) error {
		state := svc.State()
		session.Reset(countdown.FromScheme(state.Period, state.Summary, loc))
		return nil
	}
	bus.Subscribe(events.EventSchemeUpdated, resetCountdown)
	bus.Subscribe(events.EventSummaryUpdated, resetCountdown)

	hub := stream.NewHub(bus, log,
		func() {
			svc.Refresh(ctx, services.TriggerForeground)
			session.Focus(ctx)
		},
		session.Blur,
	)

	lockManager, releaseLocks, err := jobs.NewLockManagerForStore(ctx, st)
	if err != nil {
		log.Fatal().Err(err).Str("action", "lock_manager_failed").Msg("Failed to set up job locks")
	}
	defer releaseLocks()

	jobManager := jobs.NewJobManager(&jobs.ManagerConfig{
		Location:    loc,
		JobTimeout:  2 * time.Minute,
		LockManager: lockManager,
	}, log)
	for _, job := range []jobs.Job{
		jobs.NewSchemeRefreshJob(svc, cfg.PollSchedule()),
		jobs.NewSettlementRecordJob(svc, st, bus, loc, cfg.Scheme.SettlementSchedule),
	} {
		if err := jobManager.RegisterJob(job); err != nil {
			log.Fatal().Err(err).Str("job_name", job.Name()).Msg("Failed to register job")
		}
	}

	svc.Refresh(ctx, services.TriggerMount)
	jobManager.Start()

	srv := server.New(cfg, svc, st, hub, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Str("action", "server_failed").Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Str("action", "shutdown").Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	session.Blur()
	jobManager.Stop()
}
