package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/fosgateway/internal/app"
	"github.com/polkiloo/fosgateway/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	Setup,
	func(f *app.GatewayFacade) handlers.GatewayFacade { return f },
)
