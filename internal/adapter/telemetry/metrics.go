package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SubscriptionCreated  = "created"
	SubscriptionRejected = "rejected"
	SubscriptionFailed   = "failed"
)

type AppMetrics struct {
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	activeConnections prometheus.Gauge
	subscriptions     *prometheus.CounterVec
}

func NewAppMetrics(registry prometheus.Registerer) *AppMetrics {
	metrics := &AppMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Number of in-flight HTTP requests",
			},
		),
		subscriptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscriptions_total",
				Help: "Subscription attempts by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		metrics.requestDuration,
		metrics.requestTotal,
		metrics.activeConnections,
		metrics.subscriptions,
	)

	return metrics
}

func (m *AppMetrics) RecordRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)

	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

func (m *AppMetrics) IncrementActiveRequests() {
	m.activeConnections.Inc()
}

func (m *AppMetrics) DecrementActiveRequests() {
	m.activeConnections.Dec()
}

// RecordSubscription counts a subscription attempt. It is safe on a nil receiver.
func (m *AppMetrics) RecordSubscription(result string) {
	if m == nil {
		return
	}

	m.subscriptions.WithLabelValues(result).Inc()
}
