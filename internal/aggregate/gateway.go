// Package aggregate fans read requests out to the backing services, joins
// them, and builds partial-failure tolerant views from the results.
package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/metrics"
)

// Source performs reads against one backing service.
type Source interface {
	Get(ctx context.Context, endpoint string) (json.RawMessage, error)
}

// HealthView exposes the most recent health snapshot, if any.
type HealthView interface {
	Latest() (model.HealthSnapshot, bool)
}

// Request is one read of a fan-out.
type Request struct {
	Key      string
	Service  model.ServiceName
	Endpoint string
}

// Unavailable marks a slot whose service could not supply data.
type Unavailable struct {
	Service model.ServiceName `json:"service"`
	Reason  string            `json:"reason"`
}

// Slot holds either a payload or an Unavailable marker.
type Slot struct {
	Payload     json.RawMessage
	Unavailable *Unavailable
}

// Available reports whether the slot carries a payload.
func (s Slot) Available() bool {
	return s.Unavailable == nil
}

// Result maps each request key to its slot.
type Result struct {
	slots    map[string]Slot
	services map[model.ServiceName]bool
}

// Slot returns the slot for key; keys that were never requested are
// unavailable.
func (r Result) Slot(key string) Slot {
	if s, ok := r.slots[key]; ok {
		return s
	}
	return Slot{Unavailable: &Unavailable{Reason: "not requested"}}
}

// Services reports, per service touched by the fan-out, whether every
// request to it succeeded.
func (r Result) Services() map[model.ServiceName]bool {
	out := make(map[model.ServiceName]bool, len(r.services))
	for k, v := range r.services {
		out[k] = v
	}
	return out
}

// Options tune the gateway.
type Options struct {
	Timeout          time.Duration
	HealthMaxAge     time.Duration
	RecentLimit      int
	RecentUserWindow time.Duration
}

// Gateway is the single entry point for aggregated reads.
type Gateway struct {
	sources map[model.ServiceName]Source
	health  HealthView
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewGateway constructs Gateway. health may be nil, in which case every
// call is attempted.
func NewGateway(sources map[model.ServiceName]Source, health HealthView, opts Options, logger *zap.Logger, m *metrics.Metrics) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 5
	}
	if opts.RecentUserWindow <= 0 {
		opts.RecentUserWindow = 7 * 24 * time.Hour
	}
	return &Gateway{
		sources: sources,
		health:  health,
		opts:    opts,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Fetch issues every request concurrently and returns once all of them
// have settled. It never fails: unusable slots carry an Unavailable marker.
func (g *Gateway) Fetch(ctx context.Context, requests []Request) Result {
	down := g.knownDown()
	slots := make([]Slot, len(requests))

	var eg errgroup.Group
	for i, req := range requests {
		if reason, ok := down[req.Service]; ok {
			slots[i] = g.unavailable(req, "skipped", reason)
			continue
		}
		src, ok := g.sources[req.Service]
		if !ok || src == nil {
			slots[i] = g.unavailable(req, "unknown", "no source for service")
			continue
		}
		eg.Go(func() error {
			slots[i] = g.call(ctx, src, req)
			return nil
		})
	}
	_ = eg.Wait()

	res := Result{
		slots:    make(map[string]Slot, len(requests)),
		services: make(map[model.ServiceName]bool),
	}
	for i, req := range requests {
		res.slots[req.Key] = slots[i]
		ok, seen := res.services[req.Service]
		res.services[req.Service] = slots[i].Available() && (ok || !seen)
	}
	return res
}

// knownDown lists services a fresh snapshot marked unreachable.
func (g *Gateway) knownDown() map[model.ServiceName]string {
	down := map[model.ServiceName]string{}
	if g.health == nil {
		return down
	}
	snap, ok := g.health.Latest()
	if !ok || !snap.Fresh(g.now(), g.opts.HealthMaxAge) {
		return down
	}
	for name, h := range snap.Services {
		if !h.Reachable {
			down[name] = "service reported unreachable by health check"
		}
	}
	return down
}

type callResult struct {
	payload json.RawMessage
	err     error
}

func (g *Gateway) call(ctx context.Context, src Source, req Request) Slot {
	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("source panicked: %v", r)}
			}
		}()
		payload, err := src.Get(callCtx, req.Endpoint)
		done <- callResult{payload: payload, err: err}
	}()

	var res callResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res.err = callCtx.Err()
	}
	if g.metrics != nil {
		g.metrics.FetchDuration.WithLabelValues(string(req.Service)).Observe(time.Since(start).Seconds())
	}

	if res.err != nil {
		return g.unavailable(req, classify(res.err), res.err.Error())
	}
	return Slot{Payload: res.payload}
}

func classify(err error) string {
	var unreachable *backend.UnreachableError
	var serviceErr *backend.ServiceError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &unreachable):
		return "unreachable"
	case errors.As(err, &serviceErr), errors.Is(err, backend.ErrNotFound):
		return "service_error"
	default:
		return "error"
	}
}

func (g *Gateway) unavailable(req Request, class, reason string) Slot {
	g.logger.Warn("partition unavailable",
		zap.String("service", string(req.Service)),
		zap.String("endpoint", req.Endpoint),
		zap.String("class", class),
		zap.String("reason", reason),
	)
	if g.metrics != nil {
		g.metrics.PartitionUnavailable.WithLabelValues(string(req.Service), class).Inc()
	}
	return Slot{Unavailable: &Unavailable{Service: req.Service, Reason: reason}}
}
