// SPDX-License-Identifier: MIT

package solver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records solver activity. A nil *Metrics records nothing.
type Metrics struct {
	// solves counts finished solves by terminal status ("optimal",
	// "infeasible", "unbounded", "fault").
	solves *prometheus.CounterVec

	// duration tracks wall time per solve, by sense.
	duration *prometheus.HistogramVec

	// escalations counts big-M penalty escalations.
	escalations prometheus.Counter
}

// NewMetrics registers the solver collectors on reg.
// It panics if the collectors are already registered there.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		solves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lvflux_solver_solves_total",
			Help: "Total LP solves by terminal status",
		}, []string{"status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lvflux_solver_solve_duration_seconds",
			Help:    "LP solve duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}, []string{"sense"}),
		escalations: f.NewCounter(prometheus.CounterOpts{
			Name: "lvflux_solver_penalty_escalations_total",
			Help: "Total big-M penalty escalations",
		}),
	}
}

func (m *Metrics) observe(sense Sense, status string, seconds float64) {
	if m == nil {
		return
	}
	m.solves.WithLabelValues(status).Inc()
	m.duration.WithLabelValues(sense.String()).Observe(seconds)
}

func (m *Metrics) escalated() {
	if m == nil {
		return
	}
	m.escalations.Inc()
}
