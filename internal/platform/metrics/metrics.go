package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

// Outbox relay results.
const (
	OutboxSent    = "sent"
	OutboxRetried = "retried"
	OutboxFailed  = "failed"
)

// Metrics owns the ledger collectors and the registry they are exposed from.
type Metrics struct {
	registry     *prometheus.Registry
	transactions *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	outboxEvents *prometheus.CounterVec
}

// New registers the ledger collectors, plus the Go and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions recorded, by resulting status.",
		}, []string{"status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		outboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox event delivery attempts, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.transactions,
		m.httpDuration,
		m.outboxEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TransactionRecorded counts a transaction reaching status.
func (m *Metrics) TransactionRecorded(status string) {
	m.transactions.WithLabelValues(status).Inc()
}

// OutboxEvent counts one relay attempt outcome.
func (m *Metrics) OutboxEvent(result string) {
	m.outboxEvents.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records one request latency.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	m.httpDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
