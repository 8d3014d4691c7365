package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/config"
	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/metrics"
)

type staticLoader struct {
	reports []domain.RestaurantReport
	err     error
}

func (l staticLoader) LoadReports(context.Context) ([]domain.RestaurantReport, error) {
	return l.reports, l.err
}

func newTestServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()

	snapshot := NewSnapshot(staticLoader{reports: []domain.RestaurantReport{
		{RestaurantID: 1, RestaurantName: "پیتزا نمونه", HealthScore: 72, Alerts: []domain.Alert{}},
		{RestaurantID: 7, RestaurantName: "کباب", HealthScore: 40},
	}})
	n, err := snapshot.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	m, err := metrics.New()
	require.NoError(t, err)
	return NewServer(config.ServerConfig{Addr: ":0"}, snapshot, m, nil), m
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetReport(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := serve(s, http.MethodGet, "/analyze/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	body := decodeBody(t, rec)
	assert.Equal(t, "پیتزا نمونه", body["restaurant_name"])
	assert.Equal(t, float64(72), body["health_score"])
	assert.Contains(t, rec.Body.String(), "پیتزا نمونه")
}

func TestClientErrors(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	tests := []struct {
		name    string
		method  string
		target  string
		status  int
		message string
	}{
		{"unknown id", http.MethodGet, "/analyze/999", http.StatusNotFound, "Restaurant not found"},
		{"non integer id", http.MethodGet, "/analyze/abc", http.StatusBadRequest, "Invalid ID"},
		{"unknown path", http.MethodGet, "/restaurants", http.StatusNotFound, "Invalid endpoint"},
		{"wrong method", http.MethodPost, "/analyze/1", http.StatusMethodNotAllowed, "Method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.method, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeBody(t, rec)["error"])
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := serve(s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["restaurants"])

	serve(s, http.MethodGet, "/analyze/7")
	rec = serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `reviewpulse_http_requests_total{route="/analyze/{id}",status_code="200"} 1`)
}

func TestSnapshotReloadFailureKeepsPrevious(t *testing.T) {
	t.Parallel()

	snapshot := NewSnapshot(staticLoader{reports: []domain.RestaurantReport{{RestaurantID: 3}}})
	_, err := snapshot.Reload(context.Background())
	require.NoError(t, err)

	snapshot.loader = staticLoader{err: errors.New("db down")}
	_, err = snapshot.Reload(context.Background())
	assert.ErrorContains(t, err, "db down")

	_, ok := snapshot.Get(3)
	assert.True(t, ok)
}

func TestAllowOriginWithoutOriginHeader(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	for _, target := range []string{"/analyze/1", "/analyze/999", "/analyze/abc", "/nope"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), target)
	}
}
