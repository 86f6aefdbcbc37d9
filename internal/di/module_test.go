package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/app"
	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/domain/repository"
	"github.com/polkiloo/fosgateway/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		RunAddress:         "127.0.0.1:0",
		UserServiceURL:     "http://127.0.0.1:1",
		MenuServiceURL:     "http://127.0.0.1:1",
		OrderServiceURL:    "http://127.0.0.1:1",
		RequestTimeout:     100 * time.Millisecond,
		ProbeTimeout:       100 * time.Millisecond,
		HealthPollInterval: time.Hour,
		ShutdownTimeout:    time.Second,
		SessionTTL:         time.Hour,
		JWTSecret:          "secret",
		LogLevel:           "error",
		AllowedOrigins:     []string{"*"},
	}
}

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	var (
		facade   *app.GatewayFacade
		engine   *gin.Engine
		sessions repository.SessionRepository
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(testConfig()),
			fx.Replace(zap.NewNop()),
		),
		fx.Populate(&facade, &engine, &sessions),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	if facade == nil || engine == nil {
		t.Fatal("expected facade and router instances")
	}
	if _, ok := sessions.(*memory.SessionStore); !ok {
		t.Fatalf("expected in-memory sessions without redis, got %T", sessions)
	}

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected liveness 200, got %d", resp.Code)
	}
}

func TestModuleStartStop(t *testing.T) {
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(testConfig()),
			fx.Replace(zap.NewNop()),
		),
	)
	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := fxApp.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}
