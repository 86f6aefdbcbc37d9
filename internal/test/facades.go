package test

import (
	"context"
	"time"

	"github.com/polkiloo/fosgateway/internal/aggregate"
	"github.com/polkiloo/fosgateway/internal/domain/lifecycle"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// OrderServiceStub simulates the order backing service.
type OrderServiceStub struct {
	OrderFn  func(context.Context, int64) (*model.Order, error)
	UpdateFn func(context.Context, int64, model.OrderStatus, int64) (*model.Order, error)
}

// Order delegates to OrderFn or returns a pending dine-in order.
func (s OrderServiceStub) Order(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return SampleOrder(id, model.OrderStatusPending), nil
}

// UpdateStatus delegates to UpdateFn or echoes a record in the new status
// without history.
func (s OrderServiceStub) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, staffID int64) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, status, staffID)
	}
	o := SampleOrder(id, status)
	o.StatusHistory = nil
	return o, nil
}

// SampleOrder builds a valid dine-in order in status.
func SampleOrder(id int64, status model.OrderStatus) *model.Order {
	placed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &model.Order{
		ID:     id,
		UserID: 7,
		Status: status,
		StatusHistory: []model.StatusChange{
			{Status: model.OrderStatusPending, At: placed},
		},
		Items:     []model.OrderItem{{ItemID: 1, Name: "Soup", Quantity: 1}},
		Type:      model.OrderTypeDineIn,
		OrderDate: placed,
	}
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	OrderFn      func(context.Context, int64) (*model.Order, error)
	NextActionFn func(context.Context, int64) (*model.Order, *lifecycle.Action, error)
	ChangeFn     func(context.Context, *model.Session, int64, string) (*model.Order, error)
}

// Order returns a pending order by default.
func (s OrderFacadeStub) Order(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return SampleOrder(id, model.OrderStatusPending), nil
}

// NextAction returns the lifecycle action of a pending order by default.
func (s OrderFacadeStub) NextAction(ctx context.Context, id int64) (*model.Order, *lifecycle.Action, error) {
	if s.NextActionFn != nil {
		return s.NextActionFn(ctx, id)
	}
	o := SampleOrder(id, model.OrderStatusPending)
	return o, lifecycle.NextAction(o.Status), nil
}

// RequestStatusChange echoes the requested status by default.
func (s OrderFacadeStub) RequestStatusChange(ctx context.Context, session *model.Session, id int64, status string) (*model.Order, error) {
	if s.ChangeFn != nil {
		return s.ChangeFn(ctx, session, id, status)
	}
	return SampleOrder(id, model.OrderStatus(status)), nil
}

// ViewFacadeStub returns canned aggregated views.
type ViewFacadeStub struct {
	DashboardFn func(context.Context) aggregate.DashboardStats
	HomeFn      func(context.Context) aggregate.HomeView
}

// Dashboard returns the canned dashboard.
func (s ViewFacadeStub) Dashboard(ctx context.Context) aggregate.DashboardStats {
	if s.DashboardFn != nil {
		return s.DashboardFn(ctx)
	}
	return aggregate.DashboardStats{TotalOrders: aggregate.Present(0)}
}

// Home returns the canned home view.
func (s ViewFacadeStub) Home(ctx context.Context) aggregate.HomeView {
	if s.HomeFn != nil {
		return s.HomeFn(ctx)
	}
	return aggregate.HomeView{TotalMenuItems: aggregate.Present(0)}
}

// HealthFacadeStub returns canned health snapshots.
type HealthFacadeStub struct {
	HealthFn  func() (model.HealthSnapshot, bool)
	RefreshFn func(context.Context) (model.HealthSnapshot, error)
}

// Health returns the canned snapshot; none by default.
func (s HealthFacadeStub) Health() (model.HealthSnapshot, bool) {
	if s.HealthFn != nil {
		return s.HealthFn()
	}
	return model.HealthSnapshot{}, false
}

// RefreshHealth returns an empty snapshot by default.
func (s HealthFacadeStub) RefreshHealth(ctx context.Context) (model.HealthSnapshot, error) {
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx)
	}
	return model.HealthSnapshot{CheckedAt: time.Now()}, nil
}

// GatewayFacadeStub aggregates facade dependencies for HTTP layer tests.
type GatewayFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	ViewFacadeStub
	HealthFacadeStub
}
