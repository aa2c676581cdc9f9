package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementOutcome("CAdES", "PASSED")
	m.IncrementOutcome("CAdES", "PASSED")
	m.IncrementOutcome("PAdES", "FAILED")
	m.IncrementQualification("QESIG")
	m.IncrementLevel("CAdES", "LT")
	m.ObserveValidateLatency(3 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Outcome.WithLabelValues("CAdES", "PASSED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcome.WithLabelValues("PAdES", "FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Qualification.WithLabelValues("QESIG")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Level.WithLabelValues("CAdES", "LT")))

	count, err := testutil.GatherAndCount(reg, "adesverdict_validate_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementOutcome("CAdES", "PASSED")
		m.IncrementQualification("QESIG")
		m.IncrementLevel("CAdES", "B")
		m.ObserveValidateLatency(time.Millisecond)
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
