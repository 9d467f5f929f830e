package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustRegisterMetrics(reg)

	m.Restart(1, true)
	m.Restart(1, false)
	m.Restart(2, false)
	m.Swap(true)
	m.Swap(false)
	m.Swap(false)
	m.Violations(3)
	m.RouteMiles(2, 41.5)
	m.Observe(250 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.restarts.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.improvements.WithLabelValues("1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.improvements.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.swaps.WithLabelValues("kept")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.swaps.WithLabelValues("reverted")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.violations))
	assert.Equal(t, 41.5, testutil.ToFloat64(m.routeMiles.WithLabelValues("2")))

	n, err := testutil.GatherAndCount(reg, "wgups_dispatch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDispatchMetricsReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustRegisterMetrics(reg)
	second := MustRegisterMetrics(reg)

	first.Swap(true)
	second.Swap(true)
	assert.Equal(t, 2.0, testutil.ToFloat64(second.swaps.WithLabelValues("kept")))
}

func TestNilDispatchMetricsIsNoop(t *testing.T) {
	var m *DispatchMetrics
	assert.NotPanics(t, func() {
		m.Restart(1, true)
		m.Swap(false)
		m.Violations(1)
		m.RouteMiles(1, 2)
		m.Observe(time.Second)
	})
}
