package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RouteFetch("https://router.project-osrm.org", "ok")
	m.OrderCreated("failure")
	m.OrderCreated("failure")
	m.PositionUpdate("success")
	m.StreamEvent("put")
	m.HTTPRequest("/orders", 201, 12*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouteFetches.WithLabelValues("https://router.project-osrm.org", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersCreated.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PositionUpdates.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamEvents.WithLabelValues("put")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/orders", "201")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPLatencyMS))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RouteFetch("x", "ok")
		m.OrderCreated("success")
		m.PositionUpdate("failure")
		m.StreamEvent("message")
		m.HTTPRequest("/health", 200, time.Millisecond)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)
	m.OrderCreated("success")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `robot_delivery_orders_created_total{result="success"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
