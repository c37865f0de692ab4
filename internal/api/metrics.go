package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

type metrics struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	classifications *prometheus.CounterVec
	modelFailures   *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edubot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "edubot",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edubot",
			Subsystem: "chat",
			Name:      "classifications_total",
			Help:      "Chat inputs by classification outcome",
		}, []string{"outcome"}),
		modelFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edubot",
			Subsystem: "chat",
			Name:      "model_failures_total",
			Help:      "Failed calls to the language model",
		}, []string{"call"}),
	}
	m.registry.MustRegister(m.requestTotal, m.requestLatency, m.classifications, m.modelFailures)
	return m
}

func (m *metrics) recordRequest(method, route string, status int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(duration.Seconds())
}
