package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	"github.com/polkiloo/fosgateway/internal/aggregate"
	"github.com/polkiloo/fosgateway/internal/app"
	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/health"
	"github.com/polkiloo/fosgateway/internal/logger"
	"github.com/polkiloo/fosgateway/internal/metrics"
	"github.com/polkiloo/fosgateway/internal/pkg/auth"
	"github.com/polkiloo/fosgateway/internal/server/http/router"
	"github.com/polkiloo/fosgateway/internal/storage"
	"github.com/polkiloo/fosgateway/internal/usecase"
	"github.com/polkiloo/fosgateway/internal/worker"
)

// Module composes the gateway graph. opts are applied last, so tests can
// replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		backend.Module,
		health.Module,
		worker.Module,
		fx.Provide(func(p *worker.HealthPoller) aggregate.HealthView { return p }),
		aggregate.Module,
		auth.Module,
		storage.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
