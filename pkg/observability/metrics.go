package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	StateVisits      *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	Results          *prometheus.CounterVec
	Fallbacks        *prometheus.CounterVec
	Recorded         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors, plus Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StateVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clearance_state_visits_total",
				Help: "Total number of intake state entries",
			},
			[]string{"state"},
		),
		ValidationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clearance_validation_errors_total",
				Help: "Answers rejected by input validation",
			},
			[]string{"state"},
		),
		Results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clearance_eligibility_results_total",
				Help: "Eligibility classifications by bucket and status",
			},
			[]string{"bucket", "status"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clearance_fallbacks_total",
				Help: "Turns that hit an unknown state and fell back to free chat",
			},
			[]string{"from"},
		),
		Recorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clearance_recorded_total",
				Help: "Leads and analytics events handed to the recorder",
			},
			[]string{"kind", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clearance_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "code"},
		),
	}
	m.registry.MustRegister(
		m.StateVisits, m.ValidationErrors, m.Results, m.Fallbacks, m.Recorded, m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that feed the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.TurnEvent) {
			m.StateVisits.WithLabelValues(string(e.To)).Inc()
		},
		OnValidationError: func(_ context.Context, e *domain.TurnEvent) {
			m.ValidationErrors.WithLabelValues(string(e.From)).Inc()
		},
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			m.Results.WithLabelValues(string(e.Bucket), string(e.Status)).Inc()
		},
		OnFallback: func(_ context.Context, e *domain.TurnEvent) {
			m.Fallbacks.WithLabelValues(string(e.From)).Inc()
		},
	}
}

// ObserveRecord counts a recorder call. kind is "lead" or "event".
func (m *Metrics) ObserveRecord(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Recorded.WithLabelValues(kind, outcome).Inc()
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(route, method, code string, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(route, method, code).Observe(elapsed.Seconds())
}
