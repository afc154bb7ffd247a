// Package metric manages Prometheus metric registration for the engine
// and its service surface. Each package that exports metrics registers
// them here under a component name so collisions are caught at startup
// rather than at scrape time.
package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/semkernel/errors"
)

// Registrar is the interface components use to register their metrics.
type Registrar interface {
	Register(component, name string, collector prometheus.Collector) error
	Unregister(component, name string) bool
}

// Registry manages the registration and lifecycle of metrics on a private
// Prometheus registry.
type Registry struct {
	prom       *prometheus.Registry
	registered map[string]prometheus.Collector
	mu         sync.RWMutex
}

// NewRegistry creates a metrics registry with Go runtime and process
// collectors pre-registered.
func NewRegistry() *Registry {
	prom := prometheus.NewRegistry()
	prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		prom:       prom,
		registered: make(map[string]prometheus.Collector),
	}
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prom
}

// Register registers a collector for a component. Registering the same
// component/name pair twice is an error.
func (r *Registry) Register(component, name string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)
	if _, exists := r.registered[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for %s", name, component),
			"Registry", "Register", "duplicate metric registration")
	}

	if err := r.prom.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			return errors.WrapInvalid(err, "Registry", "Register",
				fmt.Sprintf("prometheus conflict for metric %s", name))
		}
		return errors.WrapFatal(err, "Registry", "Register",
			"failed to register collector with prometheus")
	}

	r.registered[key] = collector
	return nil
}

// Unregister removes a previously registered collector. Returns true if
// the collector existed.
func (r *Registry) Unregister(component, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)
	collector, exists := r.registered[key]
	if !exists {
		return false
	}

	delete(r.registered, key)
	return r.prom.Unregister(collector)
}
