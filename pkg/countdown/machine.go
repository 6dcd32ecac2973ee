// Package countdown drives the follow deadline display of the current scheme
// period.
package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
)

type State string

const (
	NoDeadline      State = "no_deadline"
	CountingDown    State = "counting_down"
	Expired         State = "expired"
	AlreadyFollowed State = "already_followed"
)

// ExpiredDisplay is shown once the deadline has passed
const ExpiredDisplay = "已截止"

// Snapshot is the result of one tick
type Snapshot struct {
	State       State         `json:"state"`
	Remaining   time.Duration `json:"-"`
	RemainingMs int64         `json:"remaining_ms"`
	Display     string        `json:"display"`
	Continue    bool          `json:"-"`
}

// Machine evaluates the countdown state of one period. Once a positive follow
// amount has been seen it reports AlreadyFollowed for the rest of its life.
type Machine struct {
	mu           sync.Mutex
	deadline     time.Time
	hasDeadline  bool
	followAmount decimal.Decimal
	followed     bool
	periodID     int64
}

// NewMachine builds a machine for a resolved deadline. hasDeadline false
// means the deadline could not be parsed.
func NewMachine(deadline time.Time, hasDeadline bool, followAmount decimal.Decimal) *Machine {
	m := &Machine{
		deadline:     deadline,
		hasDeadline:  hasDeadline,
		followAmount: followAmount,
	}
	m.followed = followAmount.IsPositive()
	return m
}

// FromScheme builds a machine from the latest period and summary. A nil
// period has no deadline.
func FromScheme(period *models.SchemePeriod, summary models.SchemeSummary, loc *time.Location) *Machine {
	if period == nil {
		return NewMachine(time.Time{}, false, summary.CurrentPeriodFollowAmount)
	}
	deadline, ok := period.DeadlineTime.Instant(loc)
	m := NewMachine(deadline, ok, summary.CurrentPeriodFollowAmount)
	m.periodID = period.PeriodID
	return m
}

// PeriodID returns the period the machine was built for, zero if unknown
func (m *Machine) PeriodID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.periodID
}

// Followed reports whether a positive follow amount has been seen
func (m *Machine) Followed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.followed || m.followAmount.IsPositive()
}

// MarkFollowed pins the machine to AlreadyFollowed
func (m *Machine) MarkFollowed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followed = true
}

// SetFollowAmount records a newer follow amount, e.g. after a summary refresh
func (m *Machine) SetFollowAmount(amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.followAmount = amount
	if amount.IsPositive() {
		m.followed = true
	}
}

// Deadline returns the resolved deadline and whether one exists
func (m *Machine) Deadline() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline, m.hasDeadline
}

// Tick evaluates the state at now
func (m *Machine) Tick(now time.Time) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.followed || m.followAmount.IsPositive() {
		m.followed = true
		return Snapshot{State: AlreadyFollowed}
	}

	if !m.hasDeadline {
		return Snapshot{State: NoDeadline}
	}

	remaining := m.deadline.Sub(now)
	if remaining <= 0 {
		return Snapshot{State: Expired, Display: ExpiredDisplay}
	}

	return Snapshot{
		State:       CountingDown,
		Remaining:   remaining,
		RemainingMs: remaining.Milliseconds(),
		Display:     FormatRemaining(remaining),
		Continue:    true,
	}
}

// FormatRemaining renders whole seconds as HH:MM:SS. Hours are not wrapped at 24.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
