// Package prommetrics exports generator metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	nananiji "github.com/komori-n/nananiji-calculator"
)

// Collector implements nananiji.MetricsCollector with Prometheus metrics.
type Collector struct {
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	knownValues   prometheus.Gauge
	rules         prometheus.Gauge

	generates        *prometheus.CounterVec
	generateDuration prometheus.Histogram
	generateSteps    prometheus.Histogram

	loads     *prometheus.CounterVec
	loadBytes prometheus.Histogram
}

var _ nananiji.MetricsCollector = (*Collector)(nil)

// New registers the generator metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nananiji_builds_total",
			Help: "Generator builds by result",
		}, []string{"result"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nananiji_build_duration_seconds",
			Help:    "Generator build duration",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		knownValues: f.NewGauge(prometheus.GaugeOpts{
			Name: "nananiji_known_values",
			Help: "Table size of the most recently built generator",
		}),
		rules: f.NewGauge(prometheus.GaugeOpts{
			Name: "nananiji_rules",
			Help: "Rule count of the most recently built generator",
		}),
		generates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nananiji_generates_total",
			Help: "Generate calls by result",
		}, []string{"result"}),
		generateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nananiji_generate_duration_seconds",
			Help:    "Generate duration",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01},
		}),
		generateSteps: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nananiji_generate_steps",
			Help:    "Rules applied per Generate call",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nananiji_loads_total",
			Help: "Snapshot loads by result",
		}, []string{"result"}),
		loadBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nananiji_load_bytes",
			Help:    "Snapshot size",
			Buckets: prometheus.ExponentialBuckets(1<<10, 4, 8),
		}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordBuild implements nananiji.MetricsCollector.
func (c *Collector) RecordBuild(known, rules int, d time.Duration, err error) {
	c.builds.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	c.buildDuration.Observe(d.Seconds())
	c.knownValues.Set(float64(known))
	c.rules.Set(float64(rules))
}

// RecordGenerate implements nananiji.MetricsCollector.
func (c *Collector) RecordGenerate(steps int, d time.Duration, err error) {
	c.generates.WithLabelValues(result(err)).Inc()
	c.generateDuration.Observe(d.Seconds())
	c.generateSteps.Observe(float64(steps))
}

// RecordLoad implements nananiji.MetricsCollector.
func (c *Collector) RecordLoad(bytes int, _ time.Duration, err error) {
	c.loads.WithLabelValues(result(err)).Inc()
	if err == nil {
		c.loadBytes.Observe(float64(bytes))
	}
}
