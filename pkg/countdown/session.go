package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Session binds a driver to an owning view. The timer only runs while the
// view is focused and is cancelled on blur.
type Session struct {
	driver *Driver
	onTick func(Snapshot)

	mu      sync.Mutex
	machine *Machine
	focused bool
	ctx     context.Context

	// followedPeriod is the last period seen as followed
	followedPeriod int64
}

// NewSession creates a session. onTick receives every snapshot, including the
// first synchronous one; it may be nil.
func NewSession(driver *Driver, onTick func(Snapshot)) *Session {
	if driver == nil {
		driver = NewDriver(DefaultInterval)
	}
	if onTick == nil {
		onTick = func(Snapshot) {}
	}
	return &Session{
		driver:  driver,
		onTick:  onTick,
		machine: NewMachine(time.Time{}, false, decimal.Zero),
	}
}

// Focus starts the countdown for the current machine. It returns whether a
// timer was scheduled.
func (s *Session) Focus(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.focused = true
	s.ctx = ctx
	return s.startLocked()
}

// Blur cancels the timer
func (s *Session) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.focused = false
	s.driver.Stop()
}

// Reset swaps in the machine built from a fresh refresh and restarts the
// timer if the view is focused. A follow seen for a period stays sticky
// across resets for that period, even when the refresh fell back to a
// summary without a follow amount.
func (s *Session) Reset(m *Machine) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noteFollowLocked(s.machine)
	if id := m.PeriodID(); id != 0 && id == s.followedPeriod {
		m.MarkFollowed()
	}
	s.noteFollowLocked(m)

	s.machine = m
	if !s.focused {
		return false
	}
	return s.startLocked()
}

// Machine returns the current machine
func (s *Session) Machine() *Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine
}

// Snapshot evaluates the current machine at now without touching the timer
func (s *Session) Snapshot(now time.Time) Snapshot {
	return s.Machine().Tick(now)
}

// Running reports whether the timer is scheduled
func (s *Session) Running() bool {
	return s.driver.Running()
}

func (s *Session) noteFollowLocked(m *Machine) {
	if m == nil {
		return
	}
	if id := m.PeriodID(); id != 0 && m.Followed() {
		s.followedPeriod = id
	}
}

func (s *Session) startLocked() bool {
	m := s.machine
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return s.driver.Start(ctx, func(now time.Time) bool {
		snap := m.Tick(now)
		s.onTick(snap)
		return snap.Continue
	})
}
