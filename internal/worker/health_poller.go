package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/health"
)

// SnapshotChecker runs one health cycle over targets.
type SnapshotChecker interface {
	Snapshot(ctx context.Context, targets health.Targets, timeout time.Duration) model.HealthSnapshot
}

// HealthPoller owns the periodic health poll. At most one cycle runs at a
// time; the latest completed snapshot is kept for readers.
type HealthPoller struct {
	checker  SnapshotChecker
	targets  health.Targets
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	latest   atomic.Pointer[model.HealthSnapshot]
	inFlight atomic.Bool

	wg     sync.WaitGroup
	runCtx context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewHealthPoller constructs the poller.
func NewHealthPoller(checker SnapshotChecker, targets health.Targets, interval, timeout time.Duration, logger *zap.Logger) *HealthPoller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthPoller{
		checker:  checker,
		targets:  targets,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start launches the polling loop. A second call while running is a no-op.
func (p *HealthPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.runCtx = runCtx
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(runCtx)
}

// Stop cancels the in-flight cycle, including one started by Refresh, and
// waits for the loop to exit.
func (p *HealthPoller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
		p.runCtx = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Latest returns the last completed snapshot.
func (p *HealthPoller) Latest() (model.HealthSnapshot, bool) {
	snap := p.latest.Load()
	if snap == nil {
		return model.HealthSnapshot{}, false
	}
	return *snap, true
}

// Refresh runs a cycle now. It fails with ErrRefreshInProgress instead of
// starting a second concurrent cycle. While the poller runs, the cycle ends
// when either ctx or the poller is stopped.
func (p *HealthPoller) Refresh(ctx context.Context) (model.HealthSnapshot, error) {
	p.mu.Lock()
	runCtx := p.runCtx
	if runCtx != nil {
		p.wg.Add(1)
	}
	p.mu.Unlock()
	if runCtx == nil {
		return p.cycle(ctx)
	}
	defer p.wg.Done()

	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	release := context.AfterFunc(runCtx, cancel)
	defer release()
	return p.cycle(cycleCtx)
}

func (p *HealthPoller) loop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *HealthPoller) tick(ctx context.Context) {
	if _, err := p.cycle(ctx); err != nil && ctx.Err() == nil {
		p.logger.Debug("health cycle skipped", zap.Error(err))
	}
}

func (p *HealthPoller) cycle(ctx context.Context) (model.HealthSnapshot, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return model.HealthSnapshot{}, domainErrors.ErrRefreshInProgress
	}
	defer p.inFlight.Store(false)

	snap := p.checker.Snapshot(ctx, p.targets, p.timeout)
	if err := ctx.Err(); err != nil {
		return model.HealthSnapshot{}, err
	}
	p.latest.Store(&snap)

	if !snap.Overall() {
		var down []string
		for name, h := range snap.Services {
			if !h.Reachable {
				down = append(down, string(name))
			}
		}
		p.logger.Warn("backing services degraded", zap.Strings("unreachable", down))
	}
	return snap, nil
}
