package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "livestock_alerts"

// Исходы доставки уведомления
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeRetried   = "retried"
)

// Metrics - метрики сервиса на собственном реестре
type Metrics struct {
	registry *prometheus.Registry

	deliveries     *prometheus.CounterVec
	recipients     *prometheus.CounterVec
	fanoutDuration prometheus.Histogram
	fanoutRuns     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification delivery attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		recipients: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "recipients_total",
			Help:      "Recipients resolved for fan-out by channel.",
		}, []string{"channel"}),
		fanoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "fanout_duration_seconds",
			Help:      "Time spent notifying all recipients of one alert.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		fanoutRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "fanout_runs_total",
			Help:      "Fan-out runs by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.deliveries,
		m.recipients,
		m.fanoutDuration,
		m.fanoutRuns,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveDelivery(channel, outcome string) {
	m.deliveries.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) ObserveRecipients(channel string, n int) {
	m.recipients.WithLabelValues(channel).Add(float64(n))
}

// ObserveFanout фиксирует один прогон рассылки; result: completed, skipped или released
func (m *Metrics) ObserveFanout(result string, d time.Duration) {
	m.fanoutRuns.WithLabelValues(result).Inc()
	if result == "completed" {
		m.fanoutDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
