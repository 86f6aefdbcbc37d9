package repository

import (
	"context"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// SessionRepository stores gateway sessions. Create must fail with
// ErrSessionExists when the id is taken.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}
