package repository

import (
	"context"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// EventPublisher announces accepted order status transitions.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event model.StatusChangedEvent) error
}
