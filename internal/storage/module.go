// Package storage selects the gateway's state backends from configuration.
package storage

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/domain/repository"
	"github.com/polkiloo/fosgateway/internal/storage/memory"
	"github.com/polkiloo/fosgateway/internal/storage/postgres"
	redisstore "github.com/polkiloo/fosgateway/internal/storage/redis"
)

// Module provides the credential, session and event repositories.
//
// Fallback credentials live in PostgreSQL when DatabaseURI is set and in
// memory otherwise; the accounts file seeds either one. Sessions and status
// events go through Redis when RedisAddress is set.
var Module = fx.Provide(newRepositories)

type repositoriesParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Ctx       context.Context
	Config    *config.Config
	Logger    *zap.Logger
}

type repositories struct {
	fx.Out

	Credentials repository.CredentialRepository
	Sessions    repository.SessionRepository
	Events      repository.EventPublisher
}

func newRepositories(p repositoriesParams) (repositories, error) {
	logger := p.Logger.Named("storage")

	credentials, err := newCredentials(p.Ctx, p.Lifecycle, p.Config, logger)
	if err != nil {
		return repositories{}, err
	}

	if p.Config.RedisAddress == "" {
		logger.Info("using in-memory sessions")
		return repositories{
			Credentials: credentials,
			Sessions:    memory.NewSessionStore(),
			Events:      memory.NewLogPublisher(p.Logger.Named("events")),
		}, nil
	}

	client, err := redisstore.Connect(p.Ctx, p.Config.RedisAddress)
	if err != nil {
		return repositories{}, err
	}
	registerRedis(p.Lifecycle, client)
	logger.Info("using redis sessions", zap.String("addr", p.Config.RedisAddress))

	return repositories{
		Credentials: credentials,
		Sessions:    redisstore.NewSessionStore(client, p.Config.SessionTTL),
		Events:      redisstore.NewPublisher(client, p.Logger.Named("events")),
	}, nil
}

func newCredentials(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (repository.CredentialRepository, error) {
	var accounts []model.FallbackAccount
	if cfg.FallbackAccountsFile != "" {
		loaded, err := memory.LoadAccounts(cfg.FallbackAccountsFile)
		if err != nil {
			return nil, err
		}
		accounts = loaded
	}

	if cfg.DatabaseURI == "" {
		if len(accounts) == 0 {
			logger.Warn("no fallback accounts configured; logins fail while the user service is down")
		}
		return memory.NewCredentialStore(accounts...), nil
	}

	store, err := postgres.New(ctx, cfg.DatabaseURI, logger)
	if err != nil {
		return nil, err
	}
	postgres.RegisterLifecycle(lc, store)
	if len(accounts) > 0 {
		if err := store.Seed(ctx, accounts); err != nil {
			return nil, fmt.Errorf("seed fallback accounts: %w", err)
		}
		logger.Info("fallback accounts seeded", zap.Int("count", len(accounts)))
	}
	return store.Credentials(), nil
}

func registerRedis(lc fx.Lifecycle, client *goredis.Client) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
}
