package flushengine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments the engine updates on every
// tick. Construct with NewMetrics, which registers every instrument with
// the registerer it is given.
type Metrics struct {
	decisions       *prometheus.CounterVec
	targetsFlushed  prometheus.Counter
	flushFailures   prometheus.Counter
	tickDuration    prometheus.Histogram
}

// NewMetrics returns a fresh Metrics instance with its instruments
// registered against reg. A nil reg leaves the instruments unregistered;
// nothing is registered with prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flushnode",
			Name:      "decisions_total",
			Help:      "Count of engine ticks by chosen order-type.",
		}, []string{"order_type"}),
		targetsFlushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flushnode",
			Name:      "targets_flushed_total",
			Help:      "Count of targets successfully flushed.",
		}),
		flushFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flushnode",
			Name:      "flush_failures_total",
			Help:      "Count of target Flush calls that returned an error.",
		}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flushnode",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one Engine.RunOnce call.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observe(d Decision, orderType string) {
	m.decisions.WithLabelValues(orderType).Inc()
	m.targetsFlushed.Add(float64(len(d.Selected) - len(d.Failed)))
	m.flushFailures.Add(float64(len(d.Failed)))
	m.tickDuration.Observe(d.Elapsed.Seconds())
}
