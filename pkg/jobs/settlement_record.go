package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/events"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/services"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/store"
)

// PeriodSource is the part of the scheme service the settlement job reads
type PeriodSource interface {
	RefreshPeriod(ctx context.Context, trigger services.Trigger) *models.SchemePeriod
	State() services.SchemeState
}

// SettlementRecordJob writes each settled period to history exactly once
type SettlementRecordJob struct {
	source   PeriodSource
	store    store.Store
	bus      *events.Bus
	loc      *time.Location
	schedule string
	now      func() time.Time
}

func NewSettlementRecordJob(source PeriodSource, st store.Store, bus *events.Bus, loc *time.Location, schedule string) *SettlementRecordJob {
	if schedule == "" {
		schedule = "0 */10 * * * *"
	}
	if loc == nil {
		loc = time.Local
	}
	return &SettlementRecordJob{
		source:   source,
		store:    st,
		bus:      bus,
		loc:      loc,
		schedule: schedule,
		now:      time.Now,
	}
}

func (j *SettlementRecordJob) Name() string {
	return "settlement_record"
}

func (j *SettlementRecordJob) Schedule() string {
	return j.schedule
}

func (j *SettlementRecordJob) Execute(ctx context.Context) error {
	log := logger.WithContext(ctx, "settlement-record")

	period := j.source.RefreshPeriod(ctx, services.TriggerPoll)
	state := j.source.State()
	if !state.PeriodOK {
		return errors.New("period unavailable, nothing recorded")
	}

	rec, err := store.NewSettlementRecord(period, state.Matches, state.Summary, j.loc, j.now())
	if errors.Is(err, store.ErrNotSettled) {
		log.Debug().Int64("period_id", state.PeriodID()).Msg("Period not settled yet")
		return nil
	}
	if err != nil {
		return err
	}

	start := time.Now()
	saved, err := j.store.SaveSettlement(ctx, rec)
	affected := 0
	if saved {
		affected = 1
	}
	log.LogDatabaseOperation("insert", "scheme_settlements", affected, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record period %d: %w", rec.PeriodID, err)
	}

	if saved && j.bus != nil {
		j.bus.Publish(events.New(events.EventSettlementRecorded, rec.PeriodID, rec))
	}
	return nil
}
