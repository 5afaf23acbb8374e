// Package metrics provides Prometheus instrumentation for the evaluation
// core.
//
// All metrics are registered with the registry passed to New, never with
// the global default registerer, so a discarded registry takes its
// metrics with it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors recorded by an Environment. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	FilterCalls   *prometheus.CounterVec
	FilterErrors  *prometheus.CounterVec
	FunctionCalls *prometheus.CounterVec
	TestCalls     *prometheus.CounterVec
	Resolutions   *prometheus.CounterVec
	SortItems     prometheus.Histogram
}

// New creates the collectors and registers them with registry.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		FilterCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tmplcore_filter_calls_total",
			Help: "Total number of filter applications",
		}, []string{"name"}),
		FilterErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tmplcore_filter_errors_total",
			Help: "Total number of filter applications that failed",
		}, []string{"name"}),
		FunctionCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tmplcore_function_calls_total",
			Help: "Total number of function calls",
		}, []string{"name"}),
		TestCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tmplcore_test_calls_total",
			Help: "Total number of tests performed",
		}, []string{"name"}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tmplcore_resolutions_total",
			Help: "Total number of variable lookups by result (found, undefined)",
		}, []string{"result"}),
		SortItems: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tmplcore_sort_items",
			Help:    "Number of items passed to the sort engine",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// RecordFilter counts a filter application and, when err is not nil, a
// failure.
func (m *Metrics) RecordFilter(name string, err error) {
	if m == nil {
		return
	}
	m.FilterCalls.WithLabelValues(name).Inc()
	if err != nil {
		m.FilterErrors.WithLabelValues(name).Inc()
	}
}

// RecordFunction counts a function call.
func (m *Metrics) RecordFunction(name string) {
	if m == nil {
		return
	}
	m.FunctionCalls.WithLabelValues(name).Inc()
}

// RecordTest counts a test.
func (m *Metrics) RecordTest(name string) {
	if m == nil {
		return
	}
	m.TestCalls.WithLabelValues(name).Inc()
}

// RecordResolution counts a variable lookup.
func (m *Metrics) RecordResolution(found bool) {
	if m == nil {
		return
	}
	result := "undefined"
	if found {
		result = "found"
	}
	m.Resolutions.WithLabelValues(result).Inc()
}

// ObserveSort records the size of a sorted sequence.
func (m *Metrics) ObserveSort(n int) {
	if m == nil {
		return
	}
	m.SortItems.Observe(float64(n))
}
