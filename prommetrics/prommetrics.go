// Package prommetrics exports engine metrics to Prometheus.
package prommetrics

import (
	"strconv"
	"time"

	"github.com/hupe1980/pairwise"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pairwise"

var _ pairwise.MetricsCollector = (*Collector)(nil)

// Collector implements pairwise.MetricsCollector with Prometheus metrics.
type Collector struct {
	binds            *prometheus.CounterVec
	evaluations      *prometheus.CounterVec
	evaluateDuration prometheus.Histogram
	cacheBuilds      *prometheus.CounterVec
	cacheBuildSecs   prometheus.Histogram
	cacheSlots       prometheus.Gauge
	assemblies       *prometheus.CounterVec
	assembleDuration *prometheus.HistogramVec
	assembledCells   prometheus.Counter
}

// New registers the collector's metrics with reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		binds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "binds_total",
			Help:      "Bind and replace attempts by outcome",
		}, []string{"outcome"}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Single-pair evaluations by outcome",
		}, []string{"outcome"}),
		evaluateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluate_duration_seconds",
			Help:      "Latency of single-pair evaluations",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
		cacheBuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_builds_total",
			Help:      "Triangular cache builds by outcome",
		}, []string{"outcome"}),
		cacheBuildSecs: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_build_duration_seconds",
			Help:      "Duration of triangular cache builds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		cacheSlots: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_slots",
			Help:      "Values held by the most recently built triangular cache",
		}),
		assemblies: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assemblies_total",
			Help:      "Matrix assemblies by outcome and symmetry",
		}, []string{"outcome", "symmetric"}),
		assembleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assemble_duration_seconds",
			Help:      "Duration of matrix assemblies",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"symmetric"}),
		assembledCells: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assembled_cells_total",
			Help:      "Matrix cells produced by successful assemblies",
		}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordBind implements pairwise.MetricsCollector.
func (c *Collector) RecordBind(err error) {
	c.binds.WithLabelValues(outcome(err)).Inc()
}

// RecordEvaluate implements pairwise.MetricsCollector.
func (c *Collector) RecordEvaluate(d time.Duration, err error) {
	c.evaluations.WithLabelValues(outcome(err)).Inc()
	c.evaluateDuration.Observe(d.Seconds())
}

// RecordCacheBuild implements pairwise.MetricsCollector.
func (c *Collector) RecordCacheBuild(n int, d time.Duration, err error) {
	c.cacheBuilds.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	c.cacheBuildSecs.Observe(d.Seconds())
	c.cacheSlots.Set(float64(n) * float64(n+1) / 2)
}

// RecordAssemble implements pairwise.MetricsCollector.
func (c *Collector) RecordAssemble(rows, cols int, symmetric bool, d time.Duration, err error) {
	sym := strconv.FormatBool(symmetric)
	c.assemblies.WithLabelValues(outcome(err), sym).Inc()
	if err != nil {
		return
	}
	c.assembleDuration.WithLabelValues(sym).Observe(d.Seconds())
	c.assembledCells.Add(float64(rows) * float64(cols))
}
