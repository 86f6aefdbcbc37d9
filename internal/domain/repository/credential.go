package repository

import (
	"context"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// CredentialRepository is the secondary credential source consulted when
// the user service cannot be reached.
type CredentialRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.FallbackAccount, error)
	Upsert(ctx context.Context, account model.FallbackAccount) error
}
