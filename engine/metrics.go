package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricRegistrar is the slice of metric.Registry the engine needs.
type metricRegistrar interface {
	Register(component, name string, collector prometheus.Collector) error
}

// engineMetrics holds the engine's Prometheus collectors.
type engineMetrics struct {
	internedStrings prometheus.Gauge
	triples         prometheus.Gauge
	shapes          prometheus.Gauge
	closurePasses   prometheus.Gauge
	asks            prometheus.Counter
	joins           prometheus.Counter
	validations     prometheus.Counter
	reasoningAsks   prometheus.Counter
}

func newEngineMetrics(reg metricRegistrar) (*engineMetrics, error) {
	m := &engineMetrics{
		internedStrings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "semkernel",
			Subsystem: "engine",
			Name:      "interned_strings",
			Help:      "Number of interned strings",
		}),
		triples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "semkernel",
			Subsystem: "engine",
			Name:      "triples",
			Help:      "Number of distinct stored triples",
		}),
		shapes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "semkernel",
			Subsystem: "engine",
			Name:      "shapes",
			Help:      "Number of registered shapes",
		}),
		closurePasses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "semkernel",
			Subsystem: "engine",
			Name:      "closure_passes",
			Help:      "Fixpoint passes of the last closure computation",
		}),
		asks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semkernel",
			Subsystem: "engine",
			Name:      "asks_total",
			Help:      "Total pattern existence queries",
		}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semkernel",
			Subsystem: "engine",
			Name:      "joins_total",
			Help:      "Total multi-pattern join queries",
		}),
		validations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semkernel",
			Subsystem: "engine",
			Name:      "validations_total",
			Help:      "Total shape validation runs",
		}),
		reasoningAsks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semkernel",
			Subsystem: "engine",
			Name:      "reasoning_asks_total",
			Help:      "Total reasoning-augmented queries",
		}),
	}

	for name, c := range map[string]prometheus.Collector{
		"interned_strings":     m.internedStrings,
		"triples":              m.triples,
		"shapes":               m.shapes,
		"closure_passes":       m.closurePasses,
		"asks_total":           m.asks,
		"joins_total":          m.joins,
		"validations_total":    m.validations,
		"reasoning_asks_total": m.reasoningAsks,
	} {
		if err := reg.Register("engine", name, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
