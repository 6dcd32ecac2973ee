package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/settlement"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(periodID int64, verdict settlement.Verdict) SettlementRecord {
	return SettlementRecord{
		PeriodID:       periodID,
		PeriodName:     "period",
		Status:         "won",
		Verdict:        verdict,
		DerivedVerdict: verdict,
		MatchCount:     2,
		RedCount:       1,
		FollowAmount:   decimal.RequireFromString("12.50"),
		RecordedAt:     time.Date(2025, 9, 28, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStore_SaveIsIdempotent(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	inserted, err := s.SaveSettlement(ctx, record(1, settlement.VerdictRed))
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if !inserted {
		t.Error("Expected first save to insert")
	}

	inserted, err = s.SaveSettlement(ctx, record(1, settlement.VerdictBlack))
	if err != nil {
		t.Fatalf("Failed to save duplicate: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate save to be ignored")
	}

	records, err := s.ListSettlements(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(records) != 1 || records[0].Verdict != settlement.VerdictRed {
		t.Errorf("Expected the first verdict to be kept, got %+v", records)
	}
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	result := time.Date(2025, 9, 27, 14, 0, 0, 0, time.UTC)
	first := record(1, settlement.VerdictBlack)
	second := record(2, settlement.VerdictRed)
	second.ResultTime = &result
	third := record(3, settlement.VerdictRed)

	for _, rec := range []SettlementRecord{first, third, second} {
		if _, err := s.SaveSettlement(ctx, rec); err != nil {
			t.Fatalf("Failed to save %d: %v", rec.PeriodID, err)
		}
	}

	records, err := s.ListSettlements(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(records) != 2 || records[0].PeriodID != 3 || records[1].PeriodID != 2 {
		t.Fatalf("Expected periods 3, 2, got %+v", records)
	}
	if records[1].ResultTime == nil || !records[1].ResultTime.Equal(result) {
		t.Errorf("Expected result time round trip, got %v", records[1].ResultTime)
	}
	if records[0].ResultTime != nil {
		t.Error("Expected nil result time to stay nil")
	}
	if !records[0].FollowAmount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Unexpected amount %s", records[0].FollowAmount)
	}

	streak := settlement.CurrentStreak(Verdicts(records))
	if streak.Verdict != settlement.VerdictRed || streak.Length != 2 {
		t.Errorf("Expected red streak of 2, got %+v", streak)
	}
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
