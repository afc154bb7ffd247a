package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// registrar is the slice of metric.Registry the service needs.
type registrar interface {
	Register(component, name string, collector prometheus.Collector) error
}

// serviceMetrics holds the query service's Prometheus collectors.
type serviceMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newServiceMetrics(reg registrar) (*serviceMetrics, error) {
	m := &serviceMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semkernel",
			Subsystem: "service",
			Name:      "requests_total",
			Help:      "Total requests handled, by subject",
		}, []string{"subject"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semkernel",
			Subsystem: "service",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency, by subject",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"subject"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"requests_total":           m.requests,
		"request_duration_seconds": m.duration,
	} {
		if err := reg.Register("service", name, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *serviceMetrics) observe(subject string, elapsed time.Duration) {
	m.requests.WithLabelValues(subject).Inc()
	m.duration.WithLabelValues(subject).Observe(elapsed.Seconds())
}
