package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// StatusChannel carries JSON encoded status change events.
const StatusChannel = "orders:status"

// Publisher announces status changes on StatusChannel.
type Publisher struct {
	client  goredis.Cmdable
	channel string
	logger  *zap.Logger
}

func NewPublisher(client goredis.Cmdable, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, channel: StatusChannel, logger: logger}
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, event model.StatusChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	receivers, err := p.client.Publish(ctx, p.channel, string(payload)).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	p.logger.Debug("status event published",
		zap.String("event", event.ID),
		zap.Int64("order", event.OrderID),
		zap.Int64("receivers", receivers),
	)
	return nil
}
