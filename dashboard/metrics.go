package dashboard

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/servicing/ventas/ventas"
)

// Metrics exposes build counters on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	monthOutcomes *prometheus.CounterVec
	buildDuration prometheus.Histogram
	buildFailures prometheus.Counter
	lastBuild     prometheus.Gauge
}

// NewMetrics creates and registers the dashboard collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		monthOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ventas",
			Name:      "month_outcomes_total",
			Help:      "Months processed by dataset builds, by month and outcome.",
		}, []string{"month", "outcome"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ventas",
			Name:      "build_duration_seconds",
			Help:      "Time taken to build the sales dataset.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		buildFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ventas",
			Name:      "build_failures_total",
			Help:      "Dataset builds that returned an error.",
		}),
		lastBuild: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ventas",
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time of the last successful dataset build.",
		}),
	}
	m.registry.MustRegister(m.monthOutcomes, m.buildDuration, m.buildFailures, m.lastBuild)
	return m
}

// ObserveBuild records the duration and outcome of one build
func (m *Metrics) ObserveBuild(ds *ventas.Dataset, took time.Duration, err error) {
	if m == nil {
		return
	}

	m.buildDuration.Observe(took.Seconds())
	if err != nil {
		m.buildFailures.Inc()
		return
	}

	for _, r := range ds.Report {
		m.monthOutcomes.WithLabelValues(r.Month, string(r.Outcome)).Inc()
	}
	m.lastBuild.Set(float64(ds.BuiltAt.Unix()))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
