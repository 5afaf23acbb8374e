package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	require.NotNil(t, m)

	m.RecordFilter("upper", nil)
	m.RecordFunction("range")
	m.RecordTest("defined")
	m.RecordResolution(true)
	m.ObserveSort(3)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"tmplcore_filter_calls_total",
		"tmplcore_function_calls_total",
		"tmplcore_test_calls_total",
		"tmplcore_resolutions_total",
		"tmplcore_sort_items",
	}, names)
}

func TestRecordFilter(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordFilter("upper", nil)
	m.RecordFilter("upper", nil)
	m.RecordFilter("get", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilterCalls.WithLabelValues("upper")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterCalls.WithLabelValues("get")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FilterErrors.WithLabelValues("upper")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterErrors.WithLabelValues("get")))
}

func TestRecordResolution(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordResolution(true)
	m.RecordResolution(false)
	m.RecordResolution(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("undefined")))
}

func TestObserveSort(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSort(0)
	m.ObserveSort(10)

	assert.Equal(t, 1, testutil.CollectAndCount(m.SortItems))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordFilter("upper", errors.New("boom"))
		m.RecordFunction("range")
		m.RecordTest("defined")
		m.RecordResolution(false)
		m.ObserveSort(5)
	})
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
