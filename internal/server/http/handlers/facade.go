package handlers

import (
	"context"

	"github.com/polkiloo/fosgateway/internal/aggregate"
	"github.com/polkiloo/fosgateway/internal/domain/lifecycle"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Login(ctx context.Context, email, password string) (*model.Session, string, error)
	Logout(ctx context.Context, token string) error
	ResolveSession(ctx context.Context, token string) (*model.Session, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Order(ctx context.Context, id int64) (*model.Order, error)
	NextAction(ctx context.Context, id int64) (*model.Order, *lifecycle.Action, error)
	RequestStatusChange(ctx context.Context, session *model.Session, id int64, status string) (*model.Order, error)
}

// ViewFacade builds aggregated read views.
type ViewFacade interface {
	Dashboard(ctx context.Context) aggregate.DashboardStats
	Home(ctx context.Context) aggregate.HomeView
}

// HealthFacade exposes backing service health.
type HealthFacade interface {
	Health() (model.HealthSnapshot, bool)
	RefreshHealth(ctx context.Context) (model.HealthSnapshot, error)
}

// GatewayFacade aggregates the full set of operations used across handlers.
type GatewayFacade interface {
	AuthFacade
	OrderFacade
	ViewFacade
	HealthFacade
}
