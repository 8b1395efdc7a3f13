// Package metrics exposes the Prometheus counters the matching engine
// increments. Fill and cancel counters are incremented from the
// notification dispatch loop, outside the structural critical section;
// stop-trigger counts are recorded by the stop sweep while the book's lock
// is held.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector groups the counters one Book increments. A nil *Collector is
// valid and every method on it is a no-op, so wiring metrics is opt-in.
type Collector struct {
	fills        *prometheus.CounterVec
	cancels      *prometheus.CounterVec
	stopTriggers prometheus.Counter
	sweeps       prometheus.Histogram
}

// NewCollector builds a Collector registered against reg, labelling series
// by instrument symbol so one registry can back every book in the process.
func NewCollector(reg prometheus.Registerer, symbol string) *Collector {
	c := &Collector{
		fills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "orderbook",
			Name:        "fills_total",
			Help:        "Number of fill events dispatched to order owners.",
			ConstLabels: prometheus.Labels{"symbol": symbol},
		}, []string{"side"}),
		cancels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "orderbook",
			Name:        "cancels_total",
			Help:        "Number of cancel events dispatched to order owners.",
			ConstLabels: prometheus.Labels{"symbol": symbol},
		}, []string{"side"}),
		stopTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "orderbook",
			Name:        "stop_triggers_total",
			Help:        "Number of resting stop orders promoted to market/limit.",
			ConstLabels: prometheus.Labels{"symbol": symbol},
		}),
		sweeps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "orderbook",
			Name:        "stop_sweep_triggered",
			Help:        "Number of stops triggered per stop-sweep invocation that triggered at least one stop.",
			ConstLabels: prometheus.Labels{"symbol": symbol},
			Buckets:     prometheus.LinearBuckets(0, 1, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(c.fills, c.cancels, c.stopTriggers, c.sweeps)
	}
	return c
}

func (c *Collector) ObserveFill(side string) {
	if c == nil {
		return
	}
	c.fills.WithLabelValues(side).Inc()
}

func (c *Collector) ObserveCancel(side string) {
	if c == nil {
		return
	}
	c.cancels.WithLabelValues(side).Inc()
}

func (c *Collector) ObserveStopTriggers(n int) {
	if c == nil || n == 0 {
		return
	}
	c.stopTriggers.Add(float64(n))
	c.sweeps.Observe(float64(n))
}
