package usecase

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/domain/repository"
	"github.com/polkiloo/fosgateway/internal/metrics"
	pkgAuth "github.com/polkiloo/fosgateway/internal/pkg/auth"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newAuthUseCase,
	newOrderUseCase,
)

type authParams struct {
	fx.In

	Users       *backend.UserClient
	Credentials repository.CredentialRepository
	Sessions    repository.SessionRepository
	Hasher      pkgAuth.PasswordHasher
	Tokens      pkgAuth.Strategy
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

func newAuthUseCase(p authParams) *AuthUseCase {
	return NewAuthUseCase(p.Users, p.Credentials, p.Sessions, p.Hasher, p.Tokens, AuthOptions{
		ProbeTimeout: p.Config.ProbeTimeout,
		SessionTTL:   p.Config.SessionTTL,
	}, p.Logger.Named("auth"), p.Metrics)
}

type orderParams struct {
	fx.In

	Orders  *backend.OrderClient
	Events  repository.EventPublisher
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Events, p.Logger.Named("orders"), p.Metrics)
}
