package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/services"
)

// ErrRefreshFailed means neither scheme resource could be fetched
var ErrRefreshFailed = errors.New("scheme refresh failed for summary and period")

// SchemeRefresher is the part of the scheme service the poll job drives
type SchemeRefresher interface {
	Refresh(ctx context.Context, trigger services.Trigger) services.SchemeState
}

// SchemeRefreshJob polls the summary and current period
type SchemeRefreshJob struct {
	service  SchemeRefresher
	schedule string
}

func NewSchemeRefreshJob(service SchemeRefresher, schedule string) *SchemeRefreshJob {
	if schedule == "" {
		schedule = "@every 30s"
	}
	return &SchemeRefreshJob{service: service, schedule: schedule}
}

func (j *SchemeRefreshJob) Name() string {
	return "scheme_refresh"
}

func (j *SchemeRefreshJob) Schedule() string {
	return j.schedule
}

// Execute refreshes both resources. A single failed resource has already been
// replaced by its fallback and is not a job failure. When both fail the
// upstream errors are wrapped so a temporary API error is retried.
func (j *SchemeRefreshJob) Execute(ctx context.Context) error {
	state := j.service.Refresh(ctx, services.TriggerPoll)
	if state.SummaryOK || state.PeriodOK {
		return nil
	}
	if cause := errors.Join(state.SummaryErr, state.PeriodErr); cause != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, cause)
	}
	return ErrRefreshFailed
}
