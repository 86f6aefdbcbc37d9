package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/aggregate"
	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/usecase"
	"github.com/polkiloo/fosgateway/internal/worker"
)

// Module wires the facade, the HTTP server and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newGatewayFacade,
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Auth   *usecase.AuthUseCase
	Orders *usecase.OrderUseCase
	Views  *aggregate.Gateway
	Poller *worker.HealthPoller
}

func newGatewayFacade(p facadeParams) *GatewayFacade {
	return NewGatewayFacade(p.Auth, p.Orders, p.Views, p.Poller)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type lifecycleParams struct {
	fx.In

	Ctx        context.Context
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *zap.Logger
	Server     *http.Server
	Poller     *worker.HealthPoller
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting gateway", zap.String("addr", p.Server.Addr))
			// The start context expires once startup completes; the poller
			// lives as long as the process.
			p.Poller.Start(p.Ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", zap.Error(err))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Poller.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("gateway stopped")
			return nil
		},
	})
}
