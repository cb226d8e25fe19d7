// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	PeriodsSimulated *prometheus.CounterVec
	EventsTriggered  *prometheus.CounterVec
	Disruptions      prometheus.Counter
	PeriodScore      *prometheus.HistogramVec
	UndefinedMargins prometheus.Counter

	// Storage metrics
	RunsSaved       prometheus.Counter
	StoreOpDuration *prometheus.HistogramVec
	StoreOpErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	WSStreams    prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "scm_simulation"
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by scenario",
		}, []string{"scenario"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Simulation run duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"scenario"}),
		PeriodsSimulated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "periods_simulated_total",
			Help:      "Total number of periods simulated by scenario",
		}, []string{"scenario"}),
		EventsTriggered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "events_triggered_total",
			Help:      "Total number of random events by name",
		}, []string{"event"}),
		Disruptions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "disruptions_total",
			Help:      "Total number of periods hit by a scenario supply disruption",
		}),
		PeriodScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "period_score",
			Help:      "Distribution of per-period scores",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}, []string{"scenario"}),
		UndefinedMargins: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "undefined_profit_margins_total",
			Help:      "Total number of periods with zero revenue and undefined profit margin",
		}),

		RunsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "runs_saved_total",
			Help:      "Total number of runs saved for comparison",
		}),
		StoreOpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		StoreOpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_errors_total",
			Help:      "Total number of store operation errors",
		}, []string{"store", "operation"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		WSStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "ws_streams_active",
			Help:      "Number of open simulation streams",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a /metrics handler for a custom registry.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordPeriod records one simulated period.
func (m *Metrics) RecordPeriod(scenario string, p *domain.PeriodMetrics) {
	m.PeriodsSimulated.WithLabelValues(scenario).Inc()
	m.PeriodScore.WithLabelValues(scenario).Observe(p.Score)
	if p.Event.Occurred {
		m.EventsTriggered.WithLabelValues(p.Event.Name).Inc()
	}
	if p.Disrupted {
		m.Disruptions.Inc()
	}
	if domain.IsUndefined(p.ProfitMargin) {
		m.UndefinedMargins.Inc()
	}
}

// RecordRun records a completed run.
func (m *Metrics) RecordRun(scenario string, durationSeconds float64) {
	m.RunsTotal.WithLabelValues(scenario).Inc()
	m.RunDuration.WithLabelValues(scenario).Observe(durationSeconds)
}

// RecordStoreOp records store operation metrics.
func (m *Metrics) RecordStoreOp(store, operation string, seconds float64, err error) {
	m.StoreOpDuration.WithLabelValues(store, operation).Observe(seconds)
	if err != nil {
		m.StoreOpErrors.WithLabelValues(store, operation).Inc()
	}
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, http.StatusText(status)).Inc()
}
