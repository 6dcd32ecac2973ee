package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/database/pool"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models/api"
)

// Pinger is anything whose liveness the health check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles health check requests
type Handler struct {
	store  Pinger
	logger *logger.Logger
}

// NewHandler creates a new health handler. store may be nil.
func NewHandler(store Pinger, log *logger.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: log,
	}
}

// HealthCheck handles the /health endpoint
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	response := api.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			response.Status = "degraded"
			response.Checks["store"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["store"] = "ok"
		}
	}
	if p, ok := h.store.(interface{ Pool() *pgxpool.Pool }); ok && p.Pool() != nil {
		stats := pool.GetStats(p.Pool())
		response.Checks["db_conns"] = fmt.Sprintf("%d/%d", stats.AcquiredConns, stats.MaxConns)
	}

	if err := api.WriteJSON(w, status, response); err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "health_check_failed").
			Str("endpoint", "/health").
			Msg("Failed to encode health response")
		return
	}

	h.logger.Debug().
		Str("action", "health_check").
		Str("endpoint", "/health").
		Str("method", r.Method).
		Str("remote_addr", r.RemoteAddr).
		Int("status_code", status).
		Dur("duration", time.Since(start)).
		Msg("Health check completed")
}
