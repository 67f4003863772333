// Package metrics instruments analysis runs with Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pprof_to_md"

// Metrics holds the collectors for analysis runs. A nil *Metrics records
// nothing.
type Metrics struct {
	analyses *prometheus.CounterVec
	duration prometheus.Histogram
	samples  prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Number of profile analyses by profile kind and outcome.",
		}, []string{"profile_kind", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent analyzing a single profile.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_analyzed_total",
			Help:      "Number of samples read by successful analyses.",
		}),
	}
	reg.MustRegister(m.analyses, m.duration, m.samples)
	return m
}

// Observe records one analysis. kind may be empty when the profile could not
// be classified.
func (m *Metrics) Observe(kind string, samples int, took time.Duration, err error) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.analyses.WithLabelValues(kind, outcome).Inc()
	m.duration.Observe(took.Seconds())
	if err == nil {
		m.samples.Add(float64(samples))
	}
}
