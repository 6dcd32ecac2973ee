package countdown

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
)

func periodAt(id int64, deadline string) *models.SchemePeriod {
	return &models.SchemePeriod{
		PeriodID:     id,
		Status:       models.PeriodPending,
		DeadlineTime: models.TimeValue{Text: deadline},
	}
}

func followedSummary(amount string) models.SchemeSummary {
	summary := models.DefaultSummary()
	summary.CurrentPeriodFollowAmount = decimal.RequireFromString(amount)
	return summary
}

func TestSession_ResetKeepsFollowForSamePeriod(t *testing.T) {
	now := time.Date(2025, 9, 27, 19, 0, 0, 0, shanghai)
	s := NewSession(NewDriver(time.Hour), nil)

	s.Reset(FromScheme(periodAt(9, "2025-09-27 20:00:00"), followedSummary("50"), shanghai))
	if snap := s.Snapshot(now); snap.State != AlreadyFollowed {
		t.Fatalf("Expected already followed, got %s", snap.State)
	}

	// summary fetch failed, fallback carries no follow amount
	s.Reset(FromScheme(periodAt(9, "2025-09-27 20:00:00"), models.DefaultSummary(), shanghai))
	if snap := s.Snapshot(now); snap.State != AlreadyFollowed {
		t.Errorf("Expected follow to survive a fallback reset, got %s", snap.State)
	}

	// lower amount for the same period
	s.Reset(FromScheme(periodAt(9, "2025-09-27 20:00:00"), followedSummary("0"), shanghai))
	if snap := s.Snapshot(now); snap.State != AlreadyFollowed {
		t.Errorf("Expected follow to survive a lower amount, got %s", snap.State)
	}

	// period fetch failed too, then recovered
	s.Reset(FromScheme(nil, models.DefaultSummary(), shanghai))
	s.Reset(FromScheme(periodAt(9, "2025-09-27 20:00:00"), models.DefaultSummary(), shanghai))
	if snap := s.Snapshot(now); snap.State != AlreadyFollowed {
		t.Errorf("Expected follow to survive a missing period, got %s", snap.State)
	}
}

func TestSession_ResetNewPeriodClearsFollow(t *testing.T) {
	now := time.Date(2025, 9, 27, 19, 0, 0, 0, shanghai)
	s := NewSession(NewDriver(time.Hour), nil)

	s.Reset(FromScheme(periodAt(9, "2025-09-27 20:00:00"), followedSummary("50"), shanghai))
	s.Reset(FromScheme(periodAt(10, "2025-09-27 20:00:00"), models.DefaultSummary(), shanghai))

	snap := s.Snapshot(now)
	if snap.State != CountingDown {
		t.Errorf("Expected a new period to count down, got %s", snap.State)
	}
	if snap.Display != "01:00:00" {
		t.Errorf("Expected 01:00:00, got %s", snap.Display)
	}
}

func TestSession_ResetWithoutPeriodIDIsNotSticky(t *testing.T) {
	now := time.Date(2025, 9, 27, 19, 0, 0, 0, shanghai)
	s := NewSession(NewDriver(time.Hour), nil)

	s.Reset(NewMachine(now.Add(time.Hour), true, decimal.NewFromInt(5)))
	s.Reset(NewMachine(now.Add(time.Hour), true, decimal.Zero))

	if snap := s.Snapshot(now); snap.State != CountingDown {
		t.Errorf("Expected unknown periods not to carry a follow, got %s", snap.State)
	}
}
