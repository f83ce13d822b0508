// Package metrics holds the Prometheus collectors of the onboarding server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all collectors behind one registry so tests can build isolated instances.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	RPCRequestsTotal           *prometheus.CounterVec
	FormSavesTotal             *prometheus.CounterVec
	ShareLookupsTotal          *prometheus.CounterVec
}

// New builds and registers the collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RPCRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpc_requests_total",
				Help: "Total number of gRPC requests.",
			},
			[]string{"method", "code"},
		),
		FormSavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_saves_total",
				Help: "Total number of onboarding form saves.",
			},
			[]string{"source", "result"},
		),
		ShareLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "share_lookups_total",
				Help: "Total number of share link lookups.",
			},
			[]string{"result"},
		),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.RPCRequestsTotal,
		m.FormSavesTotal,
		m.ShareLookupsTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Result labels.
const (
	ResultSuccess     = "success"
	ResultFailure     = "failure"
	ResultNotFound    = "not_found"
	ResultRateLimited = "rate_limited"
)

// SaveResult maps an error to a form_saves_total result label.
func SaveResult(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
