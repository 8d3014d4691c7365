// Package metrics exposes Prometheus collectors for pipeline runs and the
// serving boundary.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

// Metrics groups every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	reportsBuilt         prometheus.Counter
	restaurantsSkipped   prometheus.Counter
	collaboratorFailures *prometheus.CounterVec
	alertsRaised         *prometheus.CounterVec
	processingDuration   prometheus.Histogram
	runsTotal            *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reviewpulse_reports_built_total",
			Help: "Restaurant reports assembled",
		}),
		restaurantsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reviewpulse_restaurants_skipped_total",
			Help: "Restaurants skipped because they had no reviews",
		}),
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewpulse_collaborator_failures_total",
			Help: "External collaborator failures",
		}, []string{"collaborator", "kind"}),
		alertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewpulse_alerts_total",
			Help: "Alerts raised by type",
		}, []string{"type"}),
		processingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewpulse_restaurant_processing_seconds",
			Help:    "Time to build one restaurant report",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewpulse_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewpulse_http_requests_total",
			Help: "Served HTTP requests",
		}, []string{"route", "status_code"}),
	}

	for _, c := range []prometheus.Collector{
		m.reportsBuilt, m.restaurantsSkipped, m.collaboratorFailures,
		m.alertsRaised, m.processingDuration, m.runsTotal, m.httpRequests,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordReport counts one assembled report and its alerts.
func (m *Metrics) RecordReport(report domain.RestaurantReport, took time.Duration) {
	if m == nil {
		return
	}
	m.reportsBuilt.Inc()
	m.processingDuration.Observe(took.Seconds())
	for _, a := range report.Alerts {
		m.alertsRaised.WithLabelValues(string(a.Type)).Inc()
	}
}

func (m *Metrics) RecordSkipped() {
	if m == nil {
		return
	}
	m.restaurantsSkipped.Inc()
}

// RecordCollaboratorFailure labels untyped errors with kind "unknown".
func (m *Metrics) RecordCollaboratorFailure(collaborator string, err error) {
	if m == nil || err == nil {
		return
	}
	kind := "unknown"
	if k, ok := ports.FailureKindOf(err); ok {
		kind = string(k)
	}
	m.collaboratorFailures.WithLabelValues(collaborator, kind).Inc()
}

func (m *Metrics) RecordRun(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordHTTPRequest(route string, statusCode int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
}
