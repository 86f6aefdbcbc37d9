package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

// RegisterLifecycle pings the credential store on start and releases the
// pool on stop.
func RegisterLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storage.HealthCheck(ctx); err != nil {
				return fmt.Errorf("credential store unreachable: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			storage.logger.Info("closing credential store")
			storage.Close()
			return nil
		},
	})
}
