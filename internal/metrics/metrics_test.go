package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis("pass", nil, time.Millisecond)
	m.IncrementMode("yield", "pass")
	m.ObserveBatch(3, time.Second)
	m.IncrementRequest("/api/v1/analyze", 200)
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	g := 0.4
	m.ObserveAnalysis("pass", &g, time.Millisecond)
	m.ObserveAnalysis("pass", nil, time.Millisecond)
	m.ObserveAnalysis("unknown_material", nil, time.Millisecond)
	m.IncrementMode("separation", "fail")
	m.IncrementRequest("analyze", 422)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Analyses.WithLabelValues("pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("unknown_material")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModeResults.WithLabelValues("separation", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("analyze", "422")))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
