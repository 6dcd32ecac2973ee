// Package follow decides whether the user may follow the current scheme period.
package follow

import (
	"errors"
	"fmt"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
)

var (
	ErrNoScheme        = errors.New("no scheme data")
	ErrWrongStatus     = errors.New("scheme period is not open for following")
	ErrDeadlinePassed  = errors.New("follow deadline has passed")
	ErrAlreadyFollowed = errors.New("already followed this period")
)

// Reason codes exposed to clients and metrics
const (
	ReasonNoScheme        = "no_scheme"
	ReasonWrongStatus     = "wrong_status"
	ReasonDeadlinePassed  = "deadline_passed"
	ReasonAlreadyFollowed = "already_followed"
)

// Check returns nil when following is permitted. Conditions are checked in
// order: a period exists, it is pending, now is before its deadline, and the
// user has not staked yet. An unparseable deadline counts as passed.
func Check(period *models.SchemePeriod, summary models.SchemeSummary, now time.Time, loc *time.Location) error {
	if period == nil {
		return ErrNoScheme
	}
	if !period.IsPending() {
		return fmt.Errorf("%w: status %q", ErrWrongStatus, period.Status)
	}

	deadline, ok := period.DeadlineTime.Instant(loc)
	if !ok {
		return fmt.Errorf("%w: deadline unavailable", ErrDeadlinePassed)
	}
	if !now.Before(deadline) {
		return fmt.Errorf("%w: deadline %s", ErrDeadlinePassed, deadline.Format(time.RFC3339))
	}

	if summary.HasFollowed() {
		return ErrAlreadyFollowed
	}
	return nil
}

// Reason maps a Check error to its reason code. Unknown errors map to "".
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNoScheme):
		return ReasonNoScheme
	case errors.Is(err, ErrWrongStatus):
		return ReasonWrongStatus
	case errors.Is(err, ErrDeadlinePassed):
		return ReasonDeadlinePassed
	case errors.Is(err, ErrAlreadyFollowed):
		return ReasonAlreadyFollowed
	default:
		return ""
	}
}

// Message is the user-facing text for a Check error
func Message(err error) string {
	switch Reason(err) {
	case ReasonNoScheme:
		return "暂无方案数据"
	case ReasonWrongStatus:
		return "当前方案不可跟投"
	case ReasonDeadlinePassed:
		return "已超过跟投截止时间"
	case ReasonAlreadyFollowed:
		return "本期已跟投"
	default:
		return ""
	}
}
