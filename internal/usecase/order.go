package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/lifecycle"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/domain/repository"
	"github.com/polkiloo/fosgateway/internal/metrics"
)

// OrderService is the order backing service as seen by the status flow.
type OrderService interface {
	Order(ctx context.Context, id int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, staffID int64) (*model.Order, error)
}

// OrderUseCase drives order status changes through the lifecycle rules.
type OrderUseCase struct {
	orders  OrderService
	events  repository.EventPublisher
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders OrderService, events repository.EventPublisher, logger *zap.Logger, m *metrics.Metrics) *OrderUseCase {
	if m == nil {
		m = metrics.NewNop()
	}
	return &OrderUseCase{
		orders:  orders,
		events:  events,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Order loads a single order.
func (u *OrderUseCase) Order(ctx context.Context, id int64) (*model.Order, error) {
	order, err := u.orders.Order(ctx, id)
	if err != nil {
		return nil, u.translate(err)
	}
	return order, nil
}

// NextAction loads order id and returns it with its forward action, which
// is nil for terminal orders.
func (u *OrderUseCase) NextAction(ctx context.Context, id int64) (*model.Order, *lifecycle.Action, error) {
	order, err := u.Order(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, lifecycle.NextAction(order.Status), nil
}

// RequestStatusChange validates and forwards a transition on behalf of the
// session user, then records and announces it.
func (u *OrderUseCase) RequestStatusChange(ctx context.Context, session *model.Session, id int64, requested string) (*model.Order, error) {
	if strings.TrimSpace(requested) == "" {
		return nil, domainErrors.Reject(domainErrors.ErrMalformedRequest, "status is required")
	}
	target, err := lifecycle.ParseStatus(requested)
	if err != nil {
		u.metrics.Transitions.WithLabelValues("unknown", "rejected").Inc()
		return nil, domainErrors.Reject(domainErrors.ErrUnknownStatus, fmt.Sprintf("unknown status %q", requested))
	}

	current, err := u.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateTransition(current.Status, target); err != nil {
		u.metrics.Transitions.WithLabelValues(string(target), "rejected").Inc()
		return nil, err
	}

	stored, err := u.orders.UpdateStatus(ctx, id, target, session.UserID)
	if err != nil {
		u.metrics.Transitions.WithLabelValues(string(target), "failed").Inc()
		return nil, u.translate(err)
	}

	now := u.now()
	updated := *current
	updated.StatusHistory = append([]model.StatusChange(nil), current.StatusHistory...)
	if err := lifecycle.Apply(&updated, target, session.UserID, now); err != nil {
		return nil, err
	}
	if stored != nil {
		if stored.Status != target {
			u.metrics.Transitions.WithLabelValues(string(target), "failed").Inc()
			u.logger.Error("order service disagrees on status",
				zap.Int64("order", id),
				zap.String("requested", string(target)),
				zap.String("stored", string(stored.Status)),
			)
			return nil, fmt.Errorf("%w: order service reported %s", domainErrors.ErrServiceUnavailable, stored.Status)
		}
		if n := len(stored.StatusHistory); n == 0 || stored.StatusHistory[n-1].Status != target {
			stored.StatusHistory = updated.StatusHistory
		}
		updated = *stored
	}

	u.metrics.Transitions.WithLabelValues(string(target), "accepted").Inc()
	event := model.StatusChangedEvent{
		ID:        u.newID(),
		OrderID:   id,
		From:      current.Status,
		To:        target,
		ChangedBy: session.UserID,
		At:        updated.StatusHistory[len(updated.StatusHistory)-1].At,
	}
	if u.events != nil {
		if err := u.events.PublishStatusChanged(ctx, event); err != nil {
			u.logger.Warn("status change event not published", zap.Int64("order", id), zap.Error(err))
		}
	}
	u.logger.Info("order status changed",
		zap.Int64("order", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(target)),
		zap.Int64("staff", session.UserID),
	)
	return &updated, nil
}

func (u *OrderUseCase) translate(err error) error {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return fmt.Errorf("%w: %v", domainErrors.ErrNotFound, err)
	case backend.IsDegradation(err):
		return fmt.Errorf("%w: %v", domainErrors.ErrServiceUnavailable, err)
	default:
		return err
	}
}
