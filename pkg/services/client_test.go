package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"github.com/goldthwaiteeverette61/football-app-sub000/internal/config"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
)

// Mock HTTP transport returning a fresh response per request
type mockRoundTripper struct {
	mu       sync.Mutex
	status   int
	body     string
	err      error
	requests []*http.Request
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
		Header:     make(http.Header),
	}, nil
}

func newTestClient(rt http.RoundTripper) *SchemeClient {
	log := logger.Nop()
	return &SchemeClient{
		baseURL: "https://test.com",
		token:   "token-123",
		client:  &http.Client{Transport: rt},
		limiter: rate.NewLimiter(rate.Inf, 1),
		breaker: newBreaker(log),
		logger:  log,
	}
}

func TestGetSchemeSummary_Success(t *testing.T) {
	rt := &mockRoundTripper{
		status: 200,
		body:   `{"code": 200, "msg": "ok", "data": {"currentPeriodFollowAmount": "100.00", "betType": "normal"}}`,
	}
	client := newTestClient(rt)

	summary, err := client.GetSchemeSummary(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !summary.HasFollowed() {
		t.Error("Expected follow amount to be parsed")
	}

	req := rt.requests[0]
	if req.URL.String() != "https://test.com"+SummaryPath {
		t.Errorf("Unexpected URL %s", req.URL)
	}
	if req.Header.Get("Authorization") != "Bearer token-123" {
		t.Errorf("Expected bearer token, got %q", req.Header.Get("Authorization"))
	}
	if req.Header.Get("X-Request-ID") == "" {
		t.Error("Expected request ID header")
	}
}

func TestGetSchemeSummary_NullData(t *testing.T) {
	client := newTestClient(&mockRoundTripper{status: 200, body: `{"code": 200, "data": null}`})

	summary, err := client.GetSchemeSummary(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.HasFollowed() || summary.BetType != "normal" {
		t.Errorf("Expected default summary, got %+v", summary)
	}
}

func TestGetCurrentPeriod_EnvelopeFailure(t *testing.T) {
	client := newTestClient(&mockRoundTripper{status: 200, body: `{"code": 500, "msg": "系统繁忙", "data": null}`})

	_, err := client.GetCurrentPeriod(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Message != "系统繁忙" || apiErr.Endpoint != PeriodPath {
		t.Errorf("Unexpected API error %+v", apiErr)
	}
}

func TestGetCurrentPeriod_NoPeriod(t *testing.T) {
	client := newTestClient(&mockRoundTripper{status: 200, body: `{"code": 200, "data": null}`})

	period, err := client.GetCurrentPeriod(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if period != nil {
		t.Error("Expected nil period")
	}
}

func TestFetchData_HTTPStatus(t *testing.T) {
	client := newTestClient(&mockRoundTripper{status: 401, body: "unauthorized"})

	_, err := client.FetchData(context.Background(), SummaryPath)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != 401 || apiErr.Temporary() {
		t.Errorf("Expected permanent 401, got %+v", apiErr)
	}
}

func TestFetchData_BreakerOpensOnServerErrors(t *testing.T) {
	rt := &mockRoundTripper{status: 503, body: "down"}
	client := newTestClient(rt)

	for i := 0; i < 5; i++ {
		if _, err := client.FetchData(context.Background(), PeriodPath); err == nil {
			t.Fatal("Expected error from 503")
		}
	}

	_, err := client.FetchData(context.Background(), PeriodPath)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected breaker to be open, got %v", err)
	}
	if len(rt.requests) != 5 {
		t.Errorf("Expected open breaker to skip the request, got %d requests", len(rt.requests))
	}
}

func TestFetchData_ClientErrorsDoNotTrip(t *testing.T) {
	rt := &mockRoundTripper{status: 404, body: "missing"}
	client := newTestClient(rt)

	for i := 0; i < 8; i++ {
		_, _ = client.FetchData(context.Background(), PeriodPath)
	}
	if len(rt.requests) != 8 {
		t.Errorf("Expected every request to reach the server, got %d", len(rt.requests))
	}
}

func TestFetchData_TransportError(t *testing.T) {
	client := newTestClient(&mockRoundTripper{err: errors.New("connection refused")})

	if _, err := client.FetchData(context.Background(), SummaryPath); err == nil {
		t.Error("Expected transport error")
	}
}

func TestNewSchemeClient(t *testing.T) {
	cfg := &config.Config{External: config.ExternalAPIConfig{
		BaseURL:           "https://api.example.com/",
		Timeout:           5,
		RequestsPerSecond: 2,
	}}
	c := NewSchemeClient(cfg, logger.Nop())
	if c.baseURL != "https://api.example.com" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", c.baseURL)
	}
	if c.limiter.Burst() != 1 {
		t.Errorf("Expected burst to default to 1, got %d", c.limiter.Burst())
	}
}
