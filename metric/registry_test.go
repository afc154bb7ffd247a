package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndUnregister(t *testing.T) {
	r := NewRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "semkernel",
		Name:      "test_total",
		Help:      "test counter",
	})

	require.NoError(t, r.Register("store", "test_total", counter))

	// Same component/name pair is rejected.
	err := r.Register("store", "test_total", counter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	assert.True(t, r.Unregister("store", "test_total"))
	assert.False(t, r.Unregister("store", "test_total"))

	// Re-registration works after unregister.
	require.NoError(t, r.Register("store", "test_total", counter))
}

func TestRegisterPrometheusConflict(t *testing.T) {
	r := NewRegistry()

	a := prometheus.NewGauge(prometheus.GaugeOpts{Name: "semkernel_conflict"})
	b := prometheus.NewGauge(prometheus.GaugeOpts{Name: "semkernel_conflict"})

	require.NoError(t, r.Register("owl", "gauge_a", a))
	// Different key, same fully-qualified prometheus name.
	err := r.Register("owl", "gauge_b", b)
	require.Error(t, err)
}
