// Package metrics defines the Prometheus collectors shared by the zkl CLI
// and ledgerd.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds zkl's collectors. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	stages   *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// New registers zkl's collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zkl",
			Subsystem: "send",
			Name:      "stage_total",
			Help:      "Send stages completed, by stage and outcome.",
		}, []string{"stage", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zkl",
			Subsystem: "send",
			Name:      "retries_total",
			Help:      "Retried attempts, by stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zkl",
			Subsystem: "send",
			Name:      "duration_seconds",
			Help:      "End-to-end send latency, by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zkl",
			Subsystem: "ledgerd",
			Name:      "requests_total",
			Help:      "ledgerd HTTP requests, by route and status class.",
		}, []string{"route", "status"}),
	}
	m.Registry.MustRegister(m.stages, m.retries, m.duration, m.requests)
	return m
}

// Stage records the outcome ("ok" or an error code) of a send stage.
func (m *Metrics) Stage(stage, outcome string) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage, outcome).Inc()
}

// Retry counts one retried attempt of stage.
func (m *Metrics) Retry(stage string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(stage).Inc()
}

// Send observes the duration of a finished send.
func (m *Metrics) Send(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Request counts one ledgerd HTTP request.
func (m *Metrics) Request(route string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, statusClass(status)).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	}
	return "2xx"
}
