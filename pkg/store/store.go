// Package store persists settled scheme periods for the history view.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldthwaiteeverette61/football-app-sub000/internal/config"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/database/pool"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/settlement"
)

// ErrNotSettled is returned when a pending period is offered for recording
var ErrNotSettled = errors.New("period is not settled")

// SettlementRecord is one settled period as kept in history
type SettlementRecord struct {
	PeriodID       int64              `json:"period_id"`
	PeriodName     string             `json:"period_name"`
	Status         string             `json:"status"`
	Verdict        settlement.Verdict `json:"verdict"`
	DerivedVerdict settlement.Verdict `json:"derived_verdict"`
	MatchCount     int                `json:"match_count"`
	RedCount       int                `json:"red_count"`
	FollowAmount   decimal.Decimal    `json:"follow_amount"`
	ResultTime     *time.Time         `json:"result_time,omitempty"`
	RecordedAt     time.Time          `json:"recorded_at"`
}

// Store is the settlement history backend
type Store interface {
	// SaveSettlement inserts rec once per period. It reports whether a row was written.
	SaveSettlement(ctx context.Context, rec SettlementRecord) (bool, error)
	// ListSettlements returns up to limit records, newest period first
	ListSettlements(ctx context.Context, limit int) ([]SettlementRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// NewSettlementRecord builds the history row of a settled period
func NewSettlementRecord(period *models.SchemePeriod, matches []settlement.GroupedMatch, summary models.SchemeSummary, loc *time.Location, now time.Time) (SettlementRecord, error) {
	if period == nil || !period.IsSettled() {
		return SettlementRecord{}, ErrNotSettled
	}

	rec := SettlementRecord{
		PeriodID:       period.PeriodID,
		PeriodName:     period.Name,
		Status:         period.Status,
		Verdict:        settlement.PeriodVerdict(period),
		DerivedVerdict: settlement.DerivedVerdict(matches),
		MatchCount:     len(matches),
		FollowAmount:   summary.CurrentPeriodFollowAmount,
		RecordedAt:     now.UTC(),
	}
	for _, m := range matches {
		if m.IsRed {
			rec.RedCount++
		}
	}
	if period.ResultTime != nil {
		if t, ok := period.ResultTime.Instant(loc); ok {
			utc := t.UTC()
			rec.ResultTime = &utc
		}
	}
	return rec, nil
}

// Verdicts returns the record verdicts oldest first, as CurrentStreak expects
func Verdicts(records []SettlementRecord) []settlement.Verdict {
	out := make([]settlement.Verdict, len(records))
	for i, rec := range records {
		out[len(records)-1-i] = rec.Verdict
	}
	return out
}

// Open connects the backend selected by the database driver setting
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		p, err := pool.New(ctx, cfg.DatabaseURL(), pool.DefaultConfig())
		if err != nil {
			return nil, err
		}
		s := NewPostgresStore(p)
		if err := s.EnsureSchema(ctx); err != nil {
			p.Close()
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
