package matchstatus

import (
	"testing"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
)

func init() {
	SetLogger(logger.Nop())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw       string
		wantState State
		wantFinal bool
	}{
		{"0", NotStarted, false},
		{"1", FirstHalf, false},
		{"2", HalfTime, false},
		{"3", SecondHalf, false},
		{"-1", Finished, true},
		{" -1 ", Finished, true},
		{"7", NotStarted, false},
		{"", NotStarted, false},
		{"Payout", NotStarted, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Classify(tt.raw)
			if got.State != tt.wantState {
				t.Errorf("Classify(%q).State = %s, want %s", tt.raw, got.State, tt.wantState)
			}
			if got.IsFinal != tt.wantFinal {
				t.Errorf("Classify(%q).IsFinal = %v, want %v", tt.raw, got.IsFinal, tt.wantFinal)
			}
			if got.Display == "" {
				t.Errorf("Classify(%q) has empty display", tt.raw)
			}
		})
	}
}

func TestClassifyFeed(t *testing.T) {
	tests := []struct {
		name      string
		phase     string
		text      string
		wantState State
	}{
		{"first live phase", "1", "", Live},
		{"last live phase", "13", "", Live},
		{"finished 14", "14", "", Finished},
		{"finished 15", "15", "", Finished},
		{"finished 17", "17", "", Finished},
		{"upcoming 16", "16", "", NotStarted},
		{"upcoming 0", "0", "", NotStarted},
		{"phase wins over text", "15", "Selling", Finished},
		{"payout text", "", "Payout", Finished},
		{"live text", "", "Live", Live},
		{"upcoming text", "", "Upcoming", NotStarted},
		{"scheduled text", "", "Scheduled", NotStarted},
		{"selling text", "", "Selling", NotStarted},
		{"define text", "", "Define", NotStarted},
		{"cancelled text", "", "Cancelled", Cancelled},
		{"unknown phase falls back to text", "99", "Payout", Finished},
		{"unknown everything", "99", "Mystery", NotStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFeed(tt.phase, tt.text)
			if got.State != tt.wantState {
				t.Errorf("ClassifyFeed(%q, %q) = %s, want %s", tt.phase, tt.text, got.State, tt.wantState)
			}
			if got.IsFinal != (tt.wantState == Finished) {
				t.Errorf("IsFinal mismatch for %s", got.State)
			}
		})
	}
}

func TestReconcile_Order(t *testing.T) {
	tests := []struct {
		name      string
		phase     string
		status    string
		wantState State
	}{
		{"phase preferred over numeric status", "5", "-1", Live},
		{"phase preferred over text status", "14", "Live", Finished},
		{"text status when phase missing", "", "Payout", Finished},
		{"numeric status when phase missing", "", "2", HalfTime},
		{"numeric status when phase unknown", "42", "-1", Finished},
		{"nothing recognised", "", "", NotStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.phase, tt.status)
			if got.State != tt.wantState {
				t.Errorf("Reconcile(%q, %q) = %s, want %s", tt.phase, tt.status, got.State, tt.wantState)
			}
		})
	}
}

func TestClassification_IsLive(t *testing.T) {
	for _, s := range []State{FirstHalf, HalfTime, SecondHalf, Live} {
		if !classification(s).IsLive() {
			t.Errorf("Expected %s to be live", s)
		}
	}
	for _, s := range []State{NotStarted, Finished, Cancelled} {
		if classification(s).IsLive() {
			t.Errorf("Expected %s not to be live", s)
		}
	}
}
