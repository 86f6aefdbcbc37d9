package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"github.com/polkiloo/fosgateway/internal/di"
	"github.com/polkiloo/fosgateway/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		logger.FxEvents,
		di.Module(),
	)

	run(ctx, app)
}
