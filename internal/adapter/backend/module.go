package backend

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// Module exposes backing service clients to fx graph.
var Module = fx.Provide(
	newUserClient,
	newMenuClient,
	newOrderClient,
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

// NewUserClient creates the user service client.
func NewUserClient(baseURL string, cfg *config.Config, logger *zap.Logger) (*UserClient, error) {
	c, err := NewClient(model.ServiceUser, baseURL, userHealthPath, cfg.RequestTimeout, logger)
	if err != nil {
		return nil, err
	}
	return &UserClient{Client: c}, nil
}

// NewMenuClient creates the menu service client.
func NewMenuClient(baseURL string, cfg *config.Config, logger *zap.Logger) (*MenuClient, error) {
	c, err := NewClient(model.ServiceMenu, baseURL, menuHealthPath, cfg.RequestTimeout, logger)
	if err != nil {
		return nil, err
	}
	return &MenuClient{Client: c}, nil
}

// NewOrderClient creates the order service client.
func NewOrderClient(baseURL string, cfg *config.Config, logger *zap.Logger) (*OrderClient, error) {
	c, err := NewClient(model.ServiceOrder, baseURL, orderHealthPath, cfg.RequestTimeout, logger)
	if err != nil {
		return nil, err
	}
	return &OrderClient{Client: c}, nil
}

func newUserClient(p clientParams) (*UserClient, error) {
	return NewUserClient(p.Config.UserServiceURL, p.Config, p.Logger)
}

func newMenuClient(p clientParams) (*MenuClient, error) {
	return NewMenuClient(p.Config.MenuServiceURL, p.Config, p.Logger)
}

func newOrderClient(p clientParams) (*OrderClient, error) {
	return NewOrderClient(p.Config.OrderServiceURL, p.Config, p.Logger)
}
