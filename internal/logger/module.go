package logger

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/config"
)

// Module wires zap logger for dependency injection.
var Module = fx.Provide(newLogger)

// FxEvents routes fx's own event log to the application logger.
var FxEvents = fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Named("fx")}
})

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return New(cfg.LogLevel, cfg.Development())
}
