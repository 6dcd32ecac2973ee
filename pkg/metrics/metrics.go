package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RefreshTotal counts resource refreshes by resource and result (ok|fallback|shared)
	RefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheme_refresh_total",
		Help: "Scheme resource refreshes by resource and result",
	}, []string{"resource", "result"})

	// APICallDuration observes upstream call latency by endpoint
	APICallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheme_api_call_duration_seconds",
		Help:    "Latency of scheme API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	// EvaluationsTotal counts bet leg evaluations by outcome (H|D|A|none)
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_evaluations_total",
		Help: "Bet leg evaluations by computed result",
	}, []string{"outcome"})

	// UnknownStatusTotal counts unrecognised status codes per vocabulary
	UnknownStatusTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_status_unknown_total",
		Help: "Unrecognised match status codes by vocabulary",
	}, []string{"vocabulary"})

	// FollowRejectedTotal counts follow gate rejections by reason
	FollowRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follow_rejected_total",
		Help: "Follow attempts rejected by reason",
	}, []string{"reason"})

	// CountdownTimers is the number of running countdown drivers
	CountdownTimers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "countdown_timers_running",
		Help: "Countdown timers currently scheduled",
	})

	// StreamClients is the number of connected WebSocket clients
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stream_clients_connected",
		Help: "Connected presentation stream clients",
	})
)

func init() {
	prometheus.MustRegister(
		RefreshTotal,
		APICallDuration,
		EvaluationsTotal,
		UnknownStatusTotal,
		FollowRejectedTotal,
		CountdownTimers,
		StreamClients,
	)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

type HealthFunc func(ctx context.Context) error

// StartMetricsServer serves /metrics and /healthz on a separate port.
// Used by the cron service, which has no public HTTP surface.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if healthFn != nil {
			if err := healthFn(ctx); err != nil {
				http.Error(w, "unhealthy: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
