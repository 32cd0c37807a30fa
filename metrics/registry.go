package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is a set of named metrics backed by a Prometheus registry.
type Registry struct {
	namespace string
	prom      *prometheus.Registry

	mu      sync.Mutex
	metrics map[string]interface{}
}

// DefaultRegistry holds every metric created with a nil registry. It also
// exports the Go runtime and process collectors.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry(DefaultConfig.Namespace)
	r.prom.MustRegister(collectors.NewGoCollector())
	r.prom.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// NewRegistry creates an empty registry whose series carry namespace.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		namespace: namespace,
		prom:      prometheus.NewRegistry(),
		metrics:   make(map[string]interface{}),
	}
}

func orDefault(r *Registry) *Registry {
	if r == nil {
		return DefaultRegistry
	}
	return r
}

func (r *Registry) getOrRegister(name string, build func() (interface{}, prometheus.Collector)) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.metrics[name]; ok {
		return m
	}
	m, c := build()
	r.prom.MustRegister(c)
	r.metrics[name] = m
	return m
}

// Get returns the metric registered under name, or nil.
func (r *Registry) Get(name string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics[name]
}

// Each calls fn for every registered metric.
func (r *Registry) Each(fn func(name string, metric interface{})) {
	r.mu.Lock()
	names := make(map[string]interface{}, len(r.metrics))
	for k, v := range r.metrics {
		names[k] = v
	}
	r.mu.Unlock()
	for k, v := range names {
		fn(k, v)
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prom, promhttp.HandlerOpts{})
}

// Handler serves DefaultRegistry.
func Handler() http.Handler { return DefaultRegistry.Handler() }
