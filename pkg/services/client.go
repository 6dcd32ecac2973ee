package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/goldthwaiteeverette61/football-app-sub000/internal/config"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/metrics"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/models"
)

const (
	SummaryPath = "/app/dashboard/scheme-summary"
	PeriodPath  = "/app/schemePeriods/findActiveOrRecentPeriod"
)

// APIError represents a non-success answer from the scheme API, either at the
// HTTP level or inside the {code, msg} envelope
type APIError struct {
	Endpoint   string
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 && e.Code != e.StatusCode {
		return fmt.Sprintf("API error on %s (status %d, code %d): %s", e.Endpoint, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error on %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

// Temporary reports whether retrying later may succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ErrUnavailable is returned while the circuit breaker is open
var ErrUnavailable = errors.New("scheme API temporarily unavailable")

type SchemeClient struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewSchemeClient(cfg *config.Config, log *logger.Logger) *SchemeClient {
	if log == nil {
		log = logger.New("scheme-client")
	}

	rps := cfg.External.RequestsPerSecond
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	burst := cfg.External.Burst
	if burst <= 0 {
		burst = 1
	}

	return &SchemeClient{
		baseURL: strings.TrimRight(cfg.External.BaseURL, "/"),
		token:   cfg.External.Token,
		client: &http.Client{
			Timeout: time.Duration(cfg.External.Timeout) * time.Second,
		},
		limiter: rate.NewLimiter(limit, burst),
		breaker: newBreaker(log),
		logger:  log,
	}
}

func newBreaker(log *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "scheme-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// client-side rejections say nothing about upstream health
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.Temporary()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("action", "circuit_state_change").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker changed state")
		},
	})
}

// GetSchemeSummary fetches the user's participation summary for the current period
func (c *SchemeClient) GetSchemeSummary(ctx context.Context) (*models.SchemeSummary, error) {
	body, err := c.FetchData(ctx, SummaryPath)
	if err != nil {
		return nil, err
	}

	env, err := models.DecodeSummary(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{Endpoint: SummaryPath, StatusCode: http.StatusOK, Message: env.Message}
	}
	if env.Data == nil {
		summary := models.DefaultSummary()
		return &summary, nil
	}
	return env.Data, nil
}

// GetCurrentPeriod fetches the active or most recent period. A nil period
// without error means the server has no scheme to show.
func (c *SchemeClient) GetCurrentPeriod(ctx context.Context) (*models.SchemePeriod, error) {
	body, err := c.FetchData(ctx, PeriodPath)
	if err != nil {
		return nil, err
	}

	env, err := models.DecodePeriod(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{Endpoint: PeriodPath, StatusCode: http.StatusOK, Message: env.Message}
	}
	return env.Data, nil
}

// FetchData performs a rate-limited, breaker-guarded GET and returns the raw body
func (c *SchemeClient) FetchData(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (c *SchemeClient) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		metrics.APICallDuration.WithLabelValues(path, "error").Observe(duration.Seconds())
		c.logger.WithRequestID(requestID).LogAPICall(http.MethodGet, path, 0, duration, err)
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.APICallDuration.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Observe(duration.Seconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithRequestID(requestID).LogAPICall(http.MethodGet, path, resp.StatusCode, duration, err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(truncate(data, 256))),
		}
		c.logger.WithRequestID(requestID).LogAPICall(http.MethodGet, path, resp.StatusCode, duration, apiErr)
		return nil, apiErr
	}

	c.logger.WithRequestID(requestID).LogAPICall(http.MethodGet, path, resp.StatusCode, duration, nil)
	return data, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
