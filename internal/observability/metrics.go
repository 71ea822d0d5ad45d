package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "incident_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the refresh pipeline.
type Metrics struct {
	RecordsAssembled  prometheus.Counter
	RefreshErrors     prometheus.Counter
	PipelineRunning   prometheus.Gauge
	RefreshDuration   prometheus.Histogram
	MappableRecords   prometheus.Gauge
	UnmappableRecords prometheus.Gauge

	// Decode failures by field={latitude,longitude}, reason={missing,precision,unparseable}.
	DecodeFailures *prometheus.CounterVec

	// Publishing metrics.
	PointsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsAssembled,
		m.RefreshErrors,
		m.PipelineRunning,
		m.RefreshDuration,
		m.MappableRecords,
		m.UnmappableRecords,
		m.DecodeFailures,
		m.PointsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_assembled_total",
			Help:      "Total feed rows assembled across all refreshes, including rows served from the feed cache.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Total refresh cycles that failed to fetch or parse the feed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-assemble-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		MappableRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mappable_records",
			Help:      "Records with both coordinates decoded in the current snapshot.",
		}),
		UnmappableRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unmappable_records",
			Help:      "Records awaiting manual correction in the current snapshot.",
		}),
		DecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Coordinate decode failures by field and reason.",
		}, []string{"field", "reason"}),
		PointsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_published_total",
			Help:      "Map points written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed publish attempts.",
		}),
	}
}
