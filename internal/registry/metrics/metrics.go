package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registry instruction processing.
type Metrics struct {
	// Processed instructions by variant and outcome (ok or error code).
	Instructions *prometheus.CounterVec

	// End-to-end processing latency per instruction variant.
	ProcessLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		Instructions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "allowlist_instructions_total",
			Help: "Total processed registry instructions by variant and outcome",
		}, []string{"instruction", "outcome"}),

		ProcessLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "allowlist_process_duration_seconds",
			Help:    "Duration of registry instruction processing by variant",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"instruction"}),
	}
}

// ObserveProcess records one processed instruction. A nil receiver is a
// no-op so callers need no nil guards.
func (m *Metrics) ObserveProcess(instruction, outcome string, d time.Duration) {
	if m != nil {
		m.Instructions.WithLabelValues(instruction, outcome).Inc()
		m.ProcessLatency.WithLabelValues(instruction).Observe(d.Seconds())
	}
}
