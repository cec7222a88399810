// Package metric exposes the engine's build instrumentation on a private
// Prometheus registry: counters for built and failed tables, produced rows,
// and a build duration histogram.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the engine-level build metrics.
type Metrics struct {
	TablesBuilt   prometheus.Counter
	BuildFailures *prometheus.CounterVec
	RowsProduced  prometheus.Counter
	BuildDuration prometheus.Histogram
}

// NewMetrics creates the engine metrics, unregistered.
func NewMetrics() *Metrics {
	return &Metrics{
		TablesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seriestable",
			Subsystem: "build",
			Name:      "tables_total",
			Help:      "Total number of tables built successfully",
		}),
		BuildFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seriestable",
			Subsystem: "build",
			Name:      "failures_total",
			Help:      "Total number of failed table builds by error class",
		}, []string{"class"}),
		RowsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seriestable",
			Subsystem: "build",
			Name:      "rows_total",
			Help:      "Total number of table rows produced",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seriestable",
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Table build duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Registry owns a private Prometheus registry carrying the engine metrics
// plus Go runtime collectors.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a registry with the engine metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		Metrics:            NewMetrics(),
	}
	r.prometheusRegistry.MustRegister(
		r.Metrics.TablesBuilt,
		r.Metrics.BuildFailures,
		r.Metrics.RowsProduced,
		r.Metrics.BuildDuration,
	)
	r.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// BuildObserver adapts the metrics to the builder's observer hook. A nil
// observer is safe to call.
type BuildObserver struct {
	metrics *Metrics
	// Classify maps a build error to its failure label.
	Classify func(err error) string
}

// NewBuildObserver wraps the metrics for builder attachment.
func NewBuildObserver(m *Metrics, classify func(err error) string) *BuildObserver {
	return &BuildObserver{metrics: m, Classify: classify}
}

// ObserveBuild records one build outcome.
func (o *BuildObserver) ObserveBuild(rows, _ int, duration time.Duration, err error) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.BuildDuration.Observe(duration.Seconds())
	if err != nil {
		label := "unknown"
		if o.Classify != nil {
			label = o.Classify(err)
		}
		o.metrics.BuildFailures.WithLabelValues(label).Inc()
		return
	}
	o.metrics.TablesBuilt.Inc()
	o.metrics.RowsProduced.Add(float64(rows))
}
