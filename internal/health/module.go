package health

import (
	"go.uber.org/fx"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
)

// Module provides the monitor and the probe targets built from backend clients.
var Module = fx.Provide(
	NewMonitor,
	newTargets,
)

func newTargets(users *backend.UserClient, menu *backend.MenuClient, orders *backend.OrderClient) Targets {
	return Targets{
		{Name: users.Name(), Prober: users},
		{Name: menu.Name(), Prober: menu},
		{Name: orders.Name(), Prober: orders},
	}
}
