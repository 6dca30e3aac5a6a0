package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := New()
	m.IncICalExport()
	m.IncICalExport()
	m.IncSnapshotRefresh(nil)
	m.IncSnapshotRefresh(errors.New("boom"))
	m.ObserveFilter(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ICalExports))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotRefresh.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotRefresh.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FilterResults))
}

func TestMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncICalExport()
		m.IncSnapshotRefresh(nil)
		m.ObserveFilter(3)
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.HTTPRequests.WithLabelValues("GET", "/api/v1/events", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `entcal_http_requests_total{method="GET",route="/api/v1/events",status="200"} 1`))
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveHTTP("GET", "/api/v1/events/:id", 200, 20*time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/events/:id", 200, 10*time.Millisecond)
	m.ObserveHTTP("GET", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/events/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPDuration))
}
