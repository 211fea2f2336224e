// Package metrics holds the Prometheus collectors of the job board.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered by the service.
type Metrics struct {
	registry              *prometheus.Registry
	RequestsTotal         *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	JobsCreated           prometheus.Counter
	ApplicationsSubmitted prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobboard_http_requests_total",
				Help: "Total number of handled HTTP requests.",
			},
			[]string{"route", "method", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobboard_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		JobsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jobboard_jobs_created_total",
				Help: "Total number of created job postings.",
			},
		),
		ApplicationsSubmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jobboard_applications_submitted_total",
				Help: "Total number of submitted applications.",
			},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.JobsCreated,
		m.ApplicationsSubmitted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument records request count and latency of h under the given route label.
func (m *Metrics) Instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured := httpsnoop.CaptureMetrics(h, w, r)
		m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(captured.Code)).Inc()
		m.RequestDuration.WithLabelValues(route, r.Method).Observe(captured.Duration.Seconds())
	})
}
