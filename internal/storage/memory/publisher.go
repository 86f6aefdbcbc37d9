package memory

import (
	"context"

	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// LogPublisher writes status change events to the log.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishStatusChanged(_ context.Context, event model.StatusChangedEvent) error {
	p.logger.Info("order status changed",
		zap.String("event", event.ID),
		zap.Int64("order", event.OrderID),
		zap.String("from", string(event.From)),
		zap.String("to", string(event.To)),
		zap.Int64("changed_by", event.ChangedBy),
		zap.Time("at", event.At),
	)
	return nil
}
