package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vanderheijden86/orthoweb/pkg/metrics"
)

const metricsNamespace = "ortho"

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics() *httpMetrics {
	return &httpMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method"},
		),
	}
}

var (
	operationsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "operations_total"),
		"Timed operations by name",
		[]string{"operation"}, nil,
	)
	operationSecondsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "operation_seconds_total"),
		"Cumulative time spent in timed operations",
		[]string{"operation"}, nil,
	)
	cacheHitsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "cache_hits_total"),
		"Cache hits by cache name",
		[]string{"cache"}, nil,
	)
	cacheMissesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "cache_misses_total"),
		"Cache misses by cache name",
		[]string{"cache"}, nil,
	)
)

// timingCollector exports pkg/metrics counters at scrape time.
type timingCollector struct{}

func (timingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- operationsDesc
	ch <- operationSecondsDesc
	ch <- cacheHitsDesc
	ch <- cacheMissesDesc
}

func (timingCollector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range metrics.AllTimingMetrics() {
		st := m.Stats()
		ch <- prometheus.MustNewConstMetric(operationsDesc, prometheus.CounterValue, float64(st.Count), st.Name)
		ch <- prometheus.MustNewConstMetric(operationSecondsDesc, prometheus.CounterValue, st.TotalMs/1000, st.Name)
	}
	for _, c := range metrics.AllCacheMetrics() {
		ch <- prometheus.MustNewConstMetric(cacheHitsDesc, prometheus.CounterValue, float64(c.Hits()), c.Name())
		ch <- prometheus.MustNewConstMetric(cacheMissesDesc, prometheus.CounterValue, float64(c.Misses()), c.Name())
	}
}
