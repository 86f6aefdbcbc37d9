package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Module provides a dedicated registry and the gateway collectors.
var Module = fx.Provide(
	newRegistry,
	func(r *prometheus.Registry) prometheus.Gatherer { return r },
	func(r *prometheus.Registry) *Metrics { return New(r) },
)

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
