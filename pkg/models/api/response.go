package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/countdown"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/services"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/settlement"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/store"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// SchemeResponse is the scheme view: derived state plus the countdown
type SchemeResponse struct {
	services.SchemeState
	Countdown      countdown.Snapshot `json:"countdown"`
	VerdictDisplay string             `json:"verdict_display"`
}

// FollowCheckResponse reports whether following is currently allowed
type FollowCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// StreakResponse is the current run of identical verdicts
type StreakResponse struct {
	Verdict settlement.Verdict `json:"verdict"`
	Display string             `json:"display"`
	Length  int                `json:"length"`
}

// SettlementsResponse lists recorded periods, newest first
type SettlementsResponse struct {
	Data   []store.SettlementRecord `json:"data"`
	Streak StreakResponse           `json:"streak"`
}

// Response represents a general API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// WriteJSON encodes v with the given status code
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes an unsuccessful Response
func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, Response{Success: false, Message: message})
}
