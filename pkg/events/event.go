package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published by the core. Presentation layers subscribe
// to it instead of being called directly.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	PeriodID  int64     `json:"period_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

type EventType string

const (
	// EventNotify asks the presentation layer to show a message to the user
	EventNotify EventType = "notify"
	// Refresh results
	EventSchemeUpdated  EventType = "scheme_updated"
	EventSummaryUpdated EventType = "summary_updated"
	// Countdown display
	EventCountdownTick EventType = "countdown_tick"
	// Follow gate
	EventFollowRejected EventType = "follow_rejected"
	// Settlement history
	EventSettlementRecorded EventType = "settlement_recorded"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is the payload of EventNotify
type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// New wraps a payload in an event with a fresh ID
func New(t EventType, periodID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		PeriodID:  periodID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// Notify builds an EventNotify event
func Notify(level Level, title, message, reason string) Event {
	return New(EventNotify, 0, Notification{
		Level:   level,
		Title:   title,
		Message: message,
		Reason:  reason,
	})
}
