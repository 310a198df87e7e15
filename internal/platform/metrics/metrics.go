package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "robot_delivery"

// Metrics groups the counters shared by the order, routing and
// simulation components. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RouteFetches    *prometheus.CounterVec
	OrdersCreated   *prometheus.CounterVec
	PositionUpdates *prometheus.CounterVec
	StreamEvents    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPLatencyMS   *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RouteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_fetches_total",
			Help:      "Routing service requests by endpoint and result.",
		}, []string{"endpoint", "result"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Order creation attempts by result.",
		}, []string{"result"}),
		PositionUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "robot_position_updates_total",
			Help:      "Robot position writes by result.",
		}, []string{"result"}),
		StreamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_stream_events_total",
			Help:      "Live order stream events by type.",
		}, []string{"event"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		HTTPLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 30000},
		}, []string{"route"}),
	}

	reg.MustRegister(m.RouteFetches, m.OrdersCreated, m.PositionUpdates, m.StreamEvents, m.HTTPRequests, m.HTTPLatencyMS)
	return m
}

func (m *Metrics) RouteFetch(endpoint, result string) {
	if m == nil {
		return
	}
	m.RouteFetches.WithLabelValues(endpoint, result).Inc()
}

func (m *Metrics) OrderCreated(result string) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(result).Inc()
}

func (m *Metrics) PositionUpdate(result string) {
	if m == nil {
		return
	}
	m.PositionUpdates.WithLabelValues(result).Inc()
}

func (m *Metrics) StreamEvent(event string) {
	if m == nil {
		return
	}
	m.StreamEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) HTTPRequest(route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPLatencyMS.WithLabelValues(route).Observe(float64(dur.Milliseconds()))
}

// NewRegistry returns a registry with the Go runtime and process
// collectors already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves everything registered on g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
