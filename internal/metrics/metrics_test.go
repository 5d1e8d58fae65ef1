package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("start_game", nil)
	m.ObserveOperation("start_game", errors.New("boom"))
	m.ObserveOperation("start_game", nil)

	body := scrape(t, m)
	assert.Contains(t, body, `partygame_session_operations_total{operation="start_game",outcome="ok"} 2`)
	assert.Contains(t, body, `partygame_session_operations_total{operation="start_game",outcome="error"} 1`)
}

func TestObserveResult(t *testing.T) {
	m := New()
	m.ObserveResult("solo", 3)
	m.ObserveResult("solo", -2)

	body := scrape(t, m)
	assert.Contains(t, body, `partygame_results_recorded_total{topology="solo"} 2`)
	assert.Contains(t, body, "partygame_points_awarded_total 3")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("x", nil)
		m.ObserveResult("solo", 1)
		m.ObserveMigrationWarnings(2)
		m.ObserveHTTPRequest("GET", 200)
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("GET", 200)
	m.ObserveMigrationWarnings(1)

	body := scrape(t, m)
	assert.Contains(t, body, `partygame_http_requests_total{code="200",method="GET"} 1`)
	assert.Contains(t, body, "partygame_snapshot_migration_warnings_total 1")
}
