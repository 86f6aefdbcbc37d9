package test

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/fx"
)

// LifecycleRecorder collects hooks so tests can drive them without an fx app.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append implements fx.Lifecycle.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// Start runs every OnStart hook in registration order and stops at the
// first failure.
func (l *LifecycleRecorder) Start(ctx context.Context) error {
	for i, h := range l.Hooks {
		if h.OnStart == nil {
			continue
		}
		if err := h.OnStart(ctx); err != nil {
			return fmt.Errorf("hook %d start: %w", i, err)
		}
	}
	return nil
}

// Stop runs OnStop hooks in reverse order. Every hook runs; the first
// error is returned.
func (l *LifecycleRecorder) Stop(ctx context.Context) error {
	var first error
	for i := len(l.Hooks) - 1; i >= 0; i-- {
		h := l.Hooks[i]
		if h.OnStop == nil {
			continue
		}
		if err := h.OnStop(ctx); err != nil && first == nil {
			first = fmt.Errorf("hook %d stop: %w", i, err)
		}
	}
	return first
}

// ShutdownerStub counts shutdown requests and signals Called when set.
type ShutdownerStub struct {
	Called chan struct{}
	calls  atomic.Int32
}

// Shutdown implements fx.Shutdowner.
func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	s.calls.Add(1)
	if s.Called != nil {
		select {
		case s.Called <- struct{}{}:
		default:
		}
	}
	return nil
}

// Calls returns how many times Shutdown ran.
func (s *ShutdownerStub) Calls() int {
	return int(s.calls.Load())
}
