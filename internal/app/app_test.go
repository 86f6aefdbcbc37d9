package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/health"
	testhelpers "github.com/polkiloo/fosgateway/internal/test"
	"github.com/polkiloo/fosgateway/internal/worker"
)

func newTestPoller() *worker.HealthPoller {
	return worker.NewHealthPoller(health.NewMonitor(zap.NewNop(), nil), nil, 10*time.Millisecond, time.Second, zap.NewNop())
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewGatewayFacadeUsesPoller(t *testing.T) {
	poller := newTestPoller()
	facade := newGatewayFacade(facadeParams{Poller: poller})
	if facade.health != poller {
		t.Fatal("expected poller to back health queries")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	poller := newTestPoller()
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond}

	registerLifecycle(lifecycleParams{
		Ctx:        context.Background(),
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     zap.NewNop(),
		Server:     server,
		Poller:     poller,
		Config:     cfg,
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	startCtx, cancel := context.WithCancel(context.Background())
	if err := recorder.Start(startCtx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		if _, ok := poller.Latest(); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poller did not survive the end of the start context")
		case <-time.After(5 * time.Millisecond):
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = recorder.Stop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
	if shutdowner.Calls() != 0 {
		t.Fatalf("clean stop must not request shutdown, got %d calls", shutdowner.Calls())
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}

	registerLifecycle(lifecycleParams{
		Ctx:        context.Background(),
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     zap.NewNop(),
		Server:     &http.Server{Addr: "bad addr"},
		Poller:     newTestPoller(),
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = recorder.Stop(context.Background())
}
