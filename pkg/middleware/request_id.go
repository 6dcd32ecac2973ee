package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
)

// RequestID attaches a request-scoped logger carrying X-Request-ID, generating
// one when the client sent none
func RequestID(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		reqLog := log.WithRequestID(id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(reqLog.ToContext(r.Context())))

		reqLog.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
