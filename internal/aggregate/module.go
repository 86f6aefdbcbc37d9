package aggregate

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/metrics"
)

// Module provides the aggregation gateway.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Users   *backend.UserClient
	Menu    *backend.MenuClient
	Orders  *backend.OrderClient
	Health  HealthView
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func newGateway(p gatewayParams) *Gateway {
	sources := map[model.ServiceName]Source{
		model.ServiceUser:  p.Users,
		model.ServiceMenu:  p.Menu,
		model.ServiceOrder: p.Orders,
	}
	return NewGateway(sources, p.Health, Options{
		Timeout:          p.Config.RequestTimeout,
		HealthMaxAge:     p.Config.HealthMaxAge,
		RecentLimit:      p.Config.RecentLimit,
		RecentUserWindow: p.Config.RecentUserWindow,
	}, p.Logger.Named("aggregate"), p.Metrics)
}
