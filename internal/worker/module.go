package worker

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/health"
)

// Module provides the health poller.
var Module = fx.Provide(newHealthPoller)

func newHealthPoller(m *health.Monitor, targets health.Targets, cfg *config.Config, logger *zap.Logger) *HealthPoller {
	return NewHealthPoller(m, targets, cfg.HealthPollInterval, cfg.ProbeTimeout, logger.Named("health-poller"))
}
