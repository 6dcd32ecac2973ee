package settlements

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models/api"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/settlement"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/store"
)

const (
	defaultLimit = 30
	maxLimit     = 200
)

// Handler serves settlement history
type Handler struct {
	store  store.Store
	logger *logger.Logger
}

// NewHandler creates a new settlements handler
func NewHandler(st store.Store, log *logger.Logger) *Handler {
	return &Handler{
		store:  st,
		logger: log,
	}
}

// List handles GET /api/settlements?limit=N
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := h.store.ListSettlements(ctx, limit)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "list_settlements_failed").
			Int("limit", limit).
			Msg("Failed to list settlements")
		_ = api.WriteError(w, http.StatusInternalServerError, "Failed to load settlements")
		return
	}
	if records == nil {
		records = []store.SettlementRecord{}
	}

	streak := settlement.CurrentStreak(store.Verdicts(records))
	resp := api.SettlementsResponse{
		Data: records,
		Streak: api.StreakResponse{
			Verdict: streak.Verdict,
			Display: streak.Verdict.Display(),
			Length:  streak.Length,
		},
	}
	if err := api.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode settlements response")
	}
}
