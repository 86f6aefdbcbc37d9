package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fos_gateway"

// Metrics groups the collectors recorded by the gateway.
type Metrics struct {
	ServiceUp            *prometheus.GaugeVec
	ProbeDuration        *prometheus.HistogramVec
	FetchDuration        *prometheus.HistogramVec
	PartitionUnavailable *prometheus.CounterVec
	Logins               *prometheus.CounterVec
	LoginRejections      *prometheus.CounterVec
	Transitions          *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
}

// New registers gateway collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	buckets := []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	return &Metrics{
		ServiceUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_up",
			Help:      "Reachability of a backing service observed by the last probe",
		}, []string{"service"}),
		ProbeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Latency of backing service health probes",
			Buckets:   buckets,
		}, []string{"service"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of aggregated reads per backing service",
			Buckets:   buckets,
		}, []string{"service"}),
		PartitionUnavailable: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partition_unavailable_total",
			Help:      "Aggregation slots marked unavailable",
		}, []string{"service", "reason"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Successful logins by provenance",
		}, []string{"provenance"}),
		LoginRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_rejections_total",
			Help:      "Rejected logins by reason",
		}, []string{"reason"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status change requests by outcome",
		}, []string{"to", "outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Handled API requests",
		}, []string{"method", "route", "status"}),
	}
}

// NewNop returns collectors bound to a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
