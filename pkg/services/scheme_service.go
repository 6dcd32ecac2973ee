package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/events"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/follow"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/metrics"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/settlement"
)

// Trigger names what caused a refresh
type Trigger string

const (
	TriggerMount      Trigger = "mount"
	TriggerForeground Trigger = "foreground"
	TriggerManual     Trigger = "manual"
	TriggerPoll       Trigger = "poll"
)

const (
	resourceSummary = "summary"
	resourcePeriod  = "period"
)

// SchemeAPI is the remote collaborator SchemeService reads from
type SchemeAPI interface {
	GetSchemeSummary(ctx context.Context) (*models.SchemeSummary, error)
	GetCurrentPeriod(ctx context.Context) (*models.SchemePeriod, error)
}

// SchemeState is the derived presentation state after the latest refreshes
type SchemeState struct {
	Summary          models.SchemeSummary      `json:"summary"`
	Period           *models.SchemePeriod      `json:"period"`
	Matches          []settlement.GroupedMatch `json:"matches"`
	PeriodVerdict    settlement.Verdict        `json:"period_verdict"`
	DerivedVerdict   settlement.Verdict        `json:"derived_verdict"`
	SummaryOK        bool                      `json:"summary_ok"`
	PeriodOK         bool                      `json:"period_ok"`
	SummaryUpdatedAt time.Time                 `json:"summary_updated_at"`
	PeriodUpdatedAt  time.Time                 `json:"period_updated_at"`

	// SummaryErr and PeriodErr hold the upstream failure behind a fallback
	SummaryErr error `json:"-"`
	PeriodErr  error `json:"-"`
}

// PeriodID returns the current period ID or 0
func (s SchemeState) PeriodID() int64 {
	if s.Period == nil {
		return 0
	}
	return s.Period.PeriodID
}

// SchemeService fetches summary and period, substitutes fallbacks on failure
// and publishes the outcome on the event bus
type SchemeService struct {
	api       SchemeAPI
	bus       *events.Bus
	evaluator *settlement.Evaluator
	loc       *time.Location
	logger    *logger.Logger
	now       func() time.Time

	flight singleflight.Group

	mu    sync.RWMutex
	state SchemeState

	// summaryFollow is the follow amount of the last summary applied,
	// fallback included. A follow seen for a period sticks until the period
	// changes.
	summaryFollow  decimal.Decimal
	followedPeriod int64
	followedAmount decimal.Decimal
}

func NewSchemeService(api SchemeAPI, bus *events.Bus, loc *time.Location, log *logger.Logger) *SchemeService {
	if log == nil {
		log = logger.New("scheme-service")
	}
	if bus == nil {
		bus = events.NewBus(log)
	}
	if loc == nil {
		loc = time.Local
	}
	return &SchemeService{
		api:       api,
		bus:       bus,
		evaluator: settlement.NewEvaluator(log),
		loc:       loc,
		logger:    log,
		now:       time.Now,

		summaryFollow: decimal.Zero,
		state: SchemeState{
			Summary:        models.DefaultSummary(),
			Matches:        []settlement.GroupedMatch{},
			PeriodVerdict:  settlement.VerdictPending,
			DerivedVerdict: settlement.VerdictPending,
		},
	}
}

// Bus returns the bus the service publishes on
func (s *SchemeService) Bus() *events.Bus {
	return s.bus
}

// Location returns the zone used for zoneless deadlines
func (s *SchemeService) Location() *time.Location {
	return s.loc
}

// State returns a copy of the current state
func (s *SchemeService) State() SchemeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Refresh fetches both resources concurrently. Neither waits on the other's
// outcome; each failure is replaced by its own fallback.
func (s *SchemeService) Refresh(ctx context.Context, trigger Trigger) SchemeState {
	var g errgroup.Group
	g.Go(func() error {
		s.RefreshSummary(ctx, trigger)
		return nil
	})
	g.Go(func() error {
		s.RefreshPeriod(ctx, trigger)
		return nil
	})
	_ = g.Wait()
	return s.State()
}

// RefreshSummary fetches the summary. Concurrent callers share one request.
func (s *SchemeService) RefreshSummary(ctx context.Context, trigger Trigger) models.SchemeSummary {
	v, _, shared := s.flight.Do(resourceSummary, func() (interface{}, error) {
		start := time.Now()
		summary, err := s.api.GetSchemeSummary(ctx)
		s.logger.LogRefresh(resourceSummary, string(trigger), time.Since(start), err)

		ok := err == nil && summary != nil
		if !ok {
			fallback := models.DefaultSummary()
			summary = &fallback
			metrics.RefreshTotal.WithLabelValues(resourceSummary, "fallback").Inc()
			s.notifyFailure("获取方案摘要失败", err)
		} else {
			metrics.RefreshTotal.WithLabelValues(resourceSummary, "ok").Inc()
		}

		s.mu.Lock()
		s.state.Summary = *summary
		s.state.SummaryOK = ok
		s.state.SummaryErr = err
		s.state.SummaryUpdatedAt = s.now()
		s.summaryFollow = summary.CurrentPeriodFollowAmount
		s.stickFollowLocked(true)
		state := s.state
		s.mu.Unlock()

		s.bus.Publish(events.New(events.EventSummaryUpdated, state.PeriodID(), state))
		return state.Summary, nil
	})
	if shared {
		metrics.RefreshTotal.WithLabelValues(resourceSummary, "shared").Inc()
	}
	return v.(models.SchemeSummary)
}

// RefreshPeriod fetches the current period and regroups its matches.
// Concurrent callers share one request.
func (s *SchemeService) RefreshPeriod(ctx context.Context, trigger Trigger) *models.SchemePeriod {
	v, _, shared := s.flight.Do(resourcePeriod, func() (interface{}, error) {
		start := time.Now()
		period, err := s.api.GetCurrentPeriod(ctx)
		s.logger.LogRefresh(resourcePeriod, string(trigger), time.Since(start), err)

		ok := err == nil
		if !ok {
			period = nil
			metrics.RefreshTotal.WithLabelValues(resourcePeriod, "fallback").Inc()
			s.notifyFailure("获取今日方案失败", err)
		} else {
			metrics.RefreshTotal.WithLabelValues(resourcePeriod, "ok").Inc()
		}

		matches := []settlement.GroupedMatch{}
		if period != nil {
			matches = s.evaluator.Aggregate(period.Details)
		}

		s.mu.Lock()
		prevID := s.state.PeriodID()
		s.state.Period = period
		s.state.PeriodOK = ok
		s.state.PeriodErr = err
		s.state.Matches = matches
		s.state.PeriodVerdict = settlement.PeriodVerdict(period)
		s.state.DerivedVerdict = settlement.DerivedVerdict(matches)
		s.state.PeriodUpdatedAt = s.now()
		// a summary fetched for an earlier period must not mark the new one
		s.stickFollowLocked(prevID == 0 || prevID == s.state.PeriodID())
		state := s.state
		s.mu.Unlock()

		if period != nil {
			s.logger.WithPeriod(period.PeriodID, period.Status).Debug().
				Str("action", "period_refreshed").
				Int("matches", len(matches)).
				Str("verdict", string(state.PeriodVerdict)).
				Msg("Scheme period refreshed")
		}

		s.bus.Publish(events.New(events.EventSchemeUpdated, state.PeriodID(), state))
		return period, nil
	})
	if shared {
		metrics.RefreshTotal.WithLabelValues(resourcePeriod, "shared").Inc()
	}
	return v.(*models.SchemePeriod)
}

// CheckFollow runs the follow gate against the current state. Rejections are
// published as notify and follow_rejected events.
func (s *SchemeService) CheckFollow() error {
	state := s.State()
	err := follow.Check(state.Period, state.Summary, s.now(), s.loc)
	if err == nil {
		return nil
	}

	reason := follow.Reason(err)
	metrics.FollowRejectedTotal.WithLabelValues(reason).Inc()
	s.logger.Info().
		Str("action", "follow_rejected").
		Str("reason", reason).
		Int64("period_id", state.PeriodID()).
		Msg(err.Error())

	s.bus.Publish(events.New(events.EventFollowRejected, state.PeriodID(), reason))
	s.bus.Publish(events.Notify(events.LevelWarning, "无法跟投", follow.Message(err), reason))
	return err
}

// stickFollowLocked derives the displayed follow amount. When record is set a
// positive amount is attributed to the current period; a later summary for
// that period without one, e.g. a fallback after a failed fetch, shows the
// recorded amount instead.
func (s *SchemeService) stickFollowLocked(record bool) {
	id := s.state.PeriodID()
	amount := s.summaryFollow
	switch {
	case id == 0:
	case amount.IsPositive():
		if record {
			s.followedPeriod = id
			s.followedAmount = amount
		}
	case id == s.followedPeriod:
		amount = s.followedAmount
	}
	s.state.Summary.CurrentPeriodFollowAmount = amount
}

func (s *SchemeService) notifyFailure(title string, err error) {
	message := "网络异常，请稍后重试"
	if err != nil {
		message = err.Error()
	}
	s.bus.Publish(events.Notify(events.LevelError, title, message, ""))
}
