package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/events"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/follow"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/settlement"
)

type mockSchemeAPI struct {
	summary    *models.SchemeSummary
	summaryErr error
	period     *models.SchemePeriod
	periodErr  error

	// gate blocks period fetches until closed when non-nil
	gate        chan struct{}
	periodCalls int32
}

func (m *mockSchemeAPI) GetSchemeSummary(ctx context.Context) (*models.SchemeSummary, error) {
	return m.summary, m.summaryErr
}

func (m *mockSchemeAPI) GetCurrentPeriod(ctx context.Context) (*models.SchemePeriod, error) {
	atomic.AddInt32(&m.periodCalls, 1)
	if m.gate != nil {
		<-m.gate
	}
	return m.period, m.periodErr
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var shanghai = time.FixedZone("CST", 8*60*60)

func newTestService(api SchemeAPI) (*SchemeService, *recorder) {
	log := logger.Nop()
	bus := events.NewBus(log)
	rec := &recorder{}
	bus.SubscribeAll(rec.handle)
	return NewSchemeService(api, bus, shanghai, log), rec
}

func samplePeriod() *models.SchemePeriod {
	return &models.SchemePeriod{
		PeriodID:     9,
		Status:       models.PeriodWon,
		DeadlineTime: models.TimeValue{Text: "2025-09-27 20:00:00"},
		Details: []models.MatchDetailRow{
			{MatchID: 1, PoolCode: "HAD", Selection: "H", BizMatches: &models.BizMatch{MatchName: "A vs B", FullScore: "2:0", MatchStatus: "-1"}},
		},
	}
}

func TestRefresh_Success(t *testing.T) {
	summary := models.DefaultSummary()
	summary.SystemReserveAmount = decimal.NewFromInt(500)
	svc, rec := newTestService(&mockSchemeAPI{summary: &summary, period: samplePeriod()})

	state := svc.Refresh(context.Background(), TriggerMount)

	if !state.SummaryOK || !state.PeriodOK {
		t.Errorf("Expected both resources ok, got %+v", state)
	}
	if !state.Summary.SystemReserveAmount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Unexpected summary %+v", state.Summary)
	}
	if len(state.Matches) != 1 || !state.Matches[0].IsRed {
		t.Fatalf("Expected one red match, got %+v", state.Matches)
	}
	if state.PeriodVerdict != settlement.VerdictRed || state.DerivedVerdict != settlement.VerdictRed {
		t.Errorf("Expected red verdicts, got %s / %s", state.PeriodVerdict, state.DerivedVerdict)
	}
	if len(rec.ofType(events.EventNotify)) != 0 {
		t.Error("Expected no notifications on success")
	}
	if len(rec.ofType(events.EventSchemeUpdated)) != 1 || len(rec.ofType(events.EventSummaryUpdated)) != 1 {
		t.Error("Expected one update event per resource")
	}
}

func TestRefresh_IndependentFallbacks(t *testing.T) {
	svc, rec := newTestService(&mockSchemeAPI{
		summaryErr: errors.New("timeout"),
		period:     samplePeriod(),
	})

	state := svc.Refresh(context.Background(), TriggerForeground)

	if state.SummaryOK {
		t.Error("Expected summary fallback")
	}
	if state.Summary.HasFollowed() || !state.Summary.SystemReserveAmount.IsZero() {
		t.Errorf("Expected all-zero summary, got %+v", state.Summary)
	}
	if !state.PeriodOK || state.Period == nil {
		t.Error("Expected period to be applied despite summary failure")
	}

	notes := rec.ofType(events.EventNotify)
	if len(notes) != 1 {
		t.Fatalf("Expected one notification, got %d", len(notes))
	}
	if n := notes[0].Payload.(events.Notification); n.Level != events.LevelError {
		t.Errorf("Expected error notification, got %+v", n)
	}
}

func TestRefresh_PeriodFailureClearsScheme(t *testing.T) {
	api := &mockSchemeAPI{summary: &models.SchemeSummary{}, period: samplePeriod()}
	svc, _ := newTestService(api)
	svc.Refresh(context.Background(), TriggerMount)

	api.period = nil
	api.periodErr = errors.New("502")
	state := svc.Refresh(context.Background(), TriggerManual)

	if state.Period != nil || len(state.Matches) != 0 {
		t.Errorf("Expected empty scheme after failure, got %+v", state)
	}
	if state.PeriodVerdict != settlement.VerdictPending {
		t.Errorf("Expected pending verdict, got %s", state.PeriodVerdict)
	}
}

func TestRefreshPeriod_CollapsesConcurrentFetches(t *testing.T) {
	api := &mockSchemeAPI{period: samplePeriod(), gate: make(chan struct{})}
	svc, _ := newTestService(api)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RefreshPeriod(context.Background(), TriggerPoll)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	if got := atomic.LoadInt32(&api.periodCalls); got != 1 {
		t.Errorf("Expected one in-flight fetch, got %d", got)
	}
}

func TestCheckFollow(t *testing.T) {
	period := samplePeriod()
	period.Status = models.PeriodPending
	svc, rec := newTestService(&mockSchemeAPI{summary: &models.SchemeSummary{}, period: period})
	svc.now = func() time.Time { return time.Date(2025, 9, 27, 21, 0, 0, 0, shanghai) }

	svc.Refresh(context.Background(), TriggerMount)
	err := svc.CheckFollow()
	if !errors.Is(err, follow.ErrDeadlinePassed) {
		t.Fatalf("Expected deadline passed, got %v", err)
	}

	rejected := rec.ofType(events.EventFollowRejected)
	if len(rejected) != 1 || rejected[0].Payload != follow.ReasonDeadlinePassed {
		t.Errorf("Expected one deadline rejection event, got %+v", rejected)
	}
	if len(rec.ofType(events.EventNotify)) != 1 {
		t.Error("Expected a user notification for the rejection")
	}

	svc.now = func() time.Time { return time.Date(2025, 9, 27, 19, 0, 0, 0, shanghai) }
	if err := svc.CheckFollow(); err != nil {
		t.Errorf("Expected follow to be allowed before deadline, got %v", err)
	}
}

func TestCheckFollow_NoScheme(t *testing.T) {
	svc, _ := newTestService(&mockSchemeAPI{})
	if err := svc.CheckFollow(); !errors.Is(err, follow.ErrNoScheme) {
		t.Errorf("Expected no scheme, got %v", err)
	}
}

func TestRefreshSummary_FallbackKeepsFollowForSamePeriod(t *testing.T) {
	period := samplePeriod()
	period.Status = models.PeriodPending
	summary := models.DefaultSummary()
	summary.CurrentPeriodFollowAmount = decimal.NewFromInt(100)

	api := &mockSchemeAPI{summary: &summary, period: period}
	svc, _ := newTestService(api)
	svc.now = func() time.Time { return time.Date(2025, 9, 27, 19, 0, 0, 0, shanghai) }
	svc.Refresh(context.Background(), TriggerMount)

	api.summary = nil
	api.summaryErr = errors.New("timeout")
	state := svc.Refresh(context.Background(), TriggerForeground)

	if state.SummaryOK {
		t.Error("Expected summary fallback")
	}
	if !state.Summary.CurrentPeriodFollowAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected follow amount 100 to stick, got %s", state.Summary.CurrentPeriodFollowAmount)
	}
	if state.SummaryErr == nil {
		t.Error("Expected the upstream error on the state")
	}
	if err := svc.CheckFollow(); !errors.Is(err, follow.ErrAlreadyFollowed) {
		t.Errorf("Expected already followed after a failed refresh, got %v", err)
	}
}

func TestRefreshSummary_FollowClearsOnNewPeriod(t *testing.T) {
	period := samplePeriod()
	period.Status = models.PeriodPending
	summary := models.DefaultSummary()
	summary.CurrentPeriodFollowAmount = decimal.NewFromInt(100)

	api := &mockSchemeAPI{summary: &summary, period: period}
	svc, _ := newTestService(api)
	svc.now = func() time.Time { return time.Date(2025, 9, 27, 19, 0, 0, 0, shanghai) }
	svc.Refresh(context.Background(), TriggerMount)

	next := samplePeriod()
	next.PeriodID = 10
	next.Status = models.PeriodPending
	api.period = next
	api.summary = nil
	api.summaryErr = errors.New("timeout")
	state := svc.Refresh(context.Background(), TriggerPoll)

	if state.Summary.HasFollowed() {
		t.Errorf("Expected no follow for period 10, got %s", state.Summary.CurrentPeriodFollowAmount)
	}
	if err := svc.CheckFollow(); err != nil {
		t.Errorf("Expected follow to be allowed on the new period, got %v", err)
	}
}
