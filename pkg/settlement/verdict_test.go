package settlement

import (
	"testing"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/matchstatus"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
)

func TestPeriodVerdict(t *testing.T) {
	tests := []struct {
		status string
		want   Verdict
	}{
		{models.PeriodWon, VerdictRed},
		{models.PeriodLost, VerdictBlack},
		{models.PeriodCancelled, VerdictVoid},
		{models.PeriodPending, VerdictPending},
		{"", VerdictPending},
	}

	for _, tt := range tests {
		p := &models.SchemePeriod{Status: tt.status}
		if got := PeriodVerdict(p); got != tt.want {
			t.Errorf("PeriodVerdict(%q) = %s, want %s", tt.status, got, tt.want)
		}
	}

	if got := PeriodVerdict(nil); got != VerdictPending {
		t.Errorf("PeriodVerdict(nil) = %s, want pending", got)
	}
}

func grouped(final, red bool) GroupedMatch {
	state := matchstatus.Live
	if final {
		state = matchstatus.Finished
	}
	return GroupedMatch{
		Status: matchstatus.Classification{State: state, IsFinal: final},
		IsRed:  red,
	}
}

func TestDerivedVerdict(t *testing.T) {
	tests := []struct {
		name    string
		matches []GroupedMatch
		want    Verdict
	}{
		{"no matches", nil, VerdictPending},
		{"all final and red", []GroupedMatch{grouped(true, true), grouped(true, true)}, VerdictRed},
		{"one final black", []GroupedMatch{grouped(true, true), grouped(true, false)}, VerdictBlack},
		{"black decided early", []GroupedMatch{grouped(false, false), grouped(true, false)}, VerdictBlack},
		{"red so far but live", []GroupedMatch{grouped(true, true), grouped(false, false)}, VerdictPending},
		{"live red does not count", []GroupedMatch{grouped(false, true)}, VerdictPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivedVerdict(tt.matches); got != tt.want {
				t.Errorf("DerivedVerdict = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []Verdict
		want     Streak
	}{
		{"empty", nil, Streak{Verdict: VerdictPending}},
		{"single red", []Verdict{VerdictRed}, Streak{VerdictRed, 1}},
		{"black run", []Verdict{VerdictRed, VerdictBlack, VerdictBlack, VerdictBlack}, Streak{VerdictBlack, 3}},
		{"void does not break", []Verdict{VerdictRed, VerdictVoid, VerdictRed}, Streak{VerdictRed, 2}},
		{"pending tail skipped", []Verdict{VerdictBlack, VerdictRed, VerdictPending}, Streak{VerdictRed, 1}},
		{"only void", []Verdict{VerdictVoid, VerdictPending}, Streak{Verdict: VerdictPending}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentStreak(tt.verdicts); got != tt.want {
				t.Errorf("CurrentStreak = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVerdictDisplay(t *testing.T) {
	if VerdictRed.Display() == VerdictBlack.Display() {
		t.Error("Expected distinct red and black labels")
	}
}
