// Package metrics provides observability for signature validation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the validation collectors. A nil *Metrics records nothing.
type Metrics struct {
	// Validation outcomes by format and indication
	Outcome *prometheus.CounterVec

	// Qualification labels assigned
	Qualification *prometheus.CounterVec

	// Baseline levels reached by format
	Level *prometheus.CounterVec

	// Duration of one signature validation
	ValidateLatency prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adesverdict_validation_outcomes_total",
			Help: "Total signature validations by format and indication",
		}, []string{"format", "indication"}),

		Qualification: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adesverdict_qualification_labels_total",
			Help: "Total qualification labels assigned",
		}, []string{"qualification"}),

		Level: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adesverdict_baseline_levels_total",
			Help: "Total baseline levels reached by format",
		}, []string{"format", "level"}),

		ValidateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "adesverdict_validate_duration_seconds",
			Help:    "Duration of one signature validation",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// IncrementOutcome records the indication of a validated signature.
func (m *Metrics) IncrementOutcome(format, indication string) {
	if m != nil {
		m.Outcome.WithLabelValues(format, indication).Inc()
	}
}

// IncrementQualification records an assigned qualification label.
func (m *Metrics) IncrementQualification(label string) {
	if m != nil {
		m.Qualification.WithLabelValues(label).Inc()
	}
}

// IncrementLevel records the baseline level reached.
func (m *Metrics) IncrementLevel(format, level string) {
	if m != nil {
		m.Level.WithLabelValues(format, level).Inc()
	}
}

// ObserveValidateLatency records the duration of one validation.
func (m *Metrics) ObserveValidateLatency(d time.Duration) {
	if m != nil {
		m.ValidateLatency.Observe(d.Seconds())
	}
}
