package scheme

import (
	"context"
	"net/http"
	"time"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/countdown"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/follow"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models/api"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/services"
)

// Handler serves the scheme view
type Handler struct {
	service *services.SchemeService
	logger  *logger.Logger
	now     func() time.Time
}

// NewHandler creates a new scheme handler
func NewHandler(service *services.SchemeService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		now:     time.Now,
	}
}

// Get handles GET /api/scheme
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.service.State())
}

// Refresh handles POST /api/scheme/refresh, the pull-to-refresh path
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	h.write(w, r, h.service.Refresh(ctx, services.TriggerManual))
}

// FollowCheck handles GET /api/scheme/follow-check
func (h *Handler) FollowCheck(w http.ResponseWriter, r *http.Request) {
	resp := api.FollowCheckResponse{Allowed: true}
	if err := h.service.CheckFollow(); err != nil {
		resp = api.FollowCheckResponse{
			Reason:  follow.Reason(err),
			Message: follow.Message(err),
		}
	}

	if err := api.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.WithContext(r.Context(), "scheme-handler").Error().Err(err).Msg("Failed to encode follow check")
	}
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, state services.SchemeState) {
	snap := countdown.FromScheme(state.Period, state.Summary, h.service.Location()).Tick(h.now())

	resp := api.SchemeResponse{
		SchemeState:    state,
		Countdown:      snap,
		VerdictDisplay: state.PeriodVerdict.Display(),
	}
	if err := api.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.WithContext(r.Context(), "scheme-handler").Error().
			Err(err).
			Str("action", "encode_failed").
			Str("endpoint", r.URL.Path).
			Msg("Failed to encode scheme response")
	}
}
