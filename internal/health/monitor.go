// Package health probes backing services concurrently and reports their
// reachability without ever failing the caller.
package health

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/metrics"
)

// Prober checks a single service. Any error means unreachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// Target names a service and how to probe it.
type Target struct {
	Name   model.ServiceName
	Prober Prober
}

// Targets is the set of services probed each cycle.
type Targets []Target

// Monitor runs probes and records results.
type Monitor struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewMonitor constructs Monitor.
func NewMonitor(logger *zap.Logger, m *metrics.Metrics) *Monitor {
	return &Monitor{logger: logger, metrics: m, now: time.Now}
}

// CheckAll probes every target concurrently, each bounded by timeout, and
// waits for all of them. It never returns an error.
func (m *Monitor) CheckAll(ctx context.Context, targets Targets, timeout time.Duration) map[model.ServiceName]model.ServiceHealth {
	results := make([]model.ServiceHealth, len(targets))

	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			results[i] = m.probe(ctx, target, timeout)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[model.ServiceName]model.ServiceHealth, len(results))
	for _, h := range results {
		out[h.Service] = h
	}
	return out
}

// Snapshot runs CheckAll and stamps the cycle.
func (m *Monitor) Snapshot(ctx context.Context, targets Targets, timeout time.Duration) model.HealthSnapshot {
	services := m.CheckAll(ctx, targets, timeout)
	return model.HealthSnapshot{Services: services, CheckedAt: m.now()}
}

func (m *Monitor) probe(ctx context.Context, target Target, timeout time.Duration) model.ServiceHealth {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := m.now()
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("probe panicked: %v", r)
			}
		}()
		done <- target.Prober.Probe(probeCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-probeCtx.Done():
		err = probeCtx.Err()
	}

	latency := m.now().Sub(start)
	health := model.ServiceHealth{
		Service:   target.Name,
		Reachable: err == nil,
		CheckedAt: m.now(),
		Latency:   latency,
	}
	if err != nil {
		health.LastError = err.Error()
		m.logger.Warn("service probe failed",
			zap.String("service", string(target.Name)),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
	}

	if m.metrics != nil {
		up := 0.0
		if health.Reachable {
			up = 1
		}
		m.metrics.ServiceUp.WithLabelValues(string(target.Name)).Set(up)
		m.metrics.ProbeDuration.WithLabelValues(string(target.Name)).Observe(latency.Seconds())
	}
	return health
}
