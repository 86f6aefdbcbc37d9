package app

import (
	"context"

	"github.com/polkiloo/fosgateway/internal/aggregate"
	"github.com/polkiloo/fosgateway/internal/domain/lifecycle"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/usecase"
)

// HealthSource serves cached and on-demand health snapshots.
type HealthSource interface {
	Latest() (model.HealthSnapshot, bool)
	Refresh(ctx context.Context) (model.HealthSnapshot, error)
}

// GatewayFacade is the single surface the HTTP layer talks to.
type GatewayFacade struct {
	auth   *usecase.AuthUseCase
	orders *usecase.OrderUseCase
	views  *aggregate.Gateway
	health HealthSource
}

func NewGatewayFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, views *aggregate.Gateway, health HealthSource) *GatewayFacade {
	return &GatewayFacade{auth: auth, orders: orders, views: views, health: health}
}

func (f *GatewayFacade) Login(ctx context.Context, email, password string) (*model.Session, string, error) {
	return f.auth.Login(ctx, model.Credentials{Email: email, Password: password})
}

func (f *GatewayFacade) Logout(ctx context.Context, token string) error {
	return f.auth.Logout(ctx, token)
}

func (f *GatewayFacade) ResolveSession(ctx context.Context, token string) (*model.Session, error) {
	return f.auth.ResolveSession(ctx, token)
}

func (f *GatewayFacade) Order(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.Order(ctx, id)
}

func (f *GatewayFacade) NextAction(ctx context.Context, id int64) (*model.Order, *lifecycle.Action, error) {
	return f.orders.NextAction(ctx, id)
}

func (f *GatewayFacade) RequestStatusChange(ctx context.Context, session *model.Session, id int64, status string) (*model.Order, error) {
	return f.orders.RequestStatusChange(ctx, session, id, status)
}

func (f *GatewayFacade) Dashboard(ctx context.Context) aggregate.DashboardStats {
	return f.views.Dashboard(ctx)
}

func (f *GatewayFacade) Home(ctx context.Context) aggregate.HomeView {
	return f.views.Home(ctx)
}

// Health returns the latest polled snapshot, if a cycle has completed.
func (f *GatewayFacade) Health() (model.HealthSnapshot, bool) {
	return f.health.Latest()
}

// RefreshHealth forces a poll cycle.
func (f *GatewayFacade) RefreshHealth(ctx context.Context) (model.HealthSnapshot, error) {
	return f.health.Refresh(ctx)
}
