package morpho

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records processor activity of a toolbox
type Metrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	resolutions *prometheus.CounterVec
	deleted     prometheus.Counter
}

// NewMetrics creates toolbox metrics and registers them with reg.
// A nil registerer leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "morpho",
			Name:      "processor_runs_total",
			Help:      "Processor runs by outcome.",
		}, []string{"processor", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "morpho",
			Name:      "processor_run_duration_seconds",
			Help:      "Wall time spent in processor Run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"processor"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "morpho",
			Name:      "connections_resolved_total",
			Help:      "Attribute values handed from a producer to a consumer.",
		}, []string{"producer", "consumer"}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "morpho",
			Name:      "processors_deleted_total",
			Help:      "Processors released after running.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.duration, m.resolutions, m.deleted)
	}
	return m
}

func (m *Metrics) observeRun(name, status string, seconds float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(name, status).Inc()
	m.duration.WithLabelValues(name).Observe(seconds)
}

func (m *Metrics) observeResolution(c *Connection) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(c.Producer, c.Consumer).Inc()
}

func (m *Metrics) observeDeletion() {
	if m == nil {
		return
	}
	m.deleted.Inc()
}
