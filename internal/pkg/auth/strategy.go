package auth

import (
	"errors"
	"time"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Claims is what a session token asserts about its bearer.
type Claims struct {
	SessionID  string
	UserID     int64
	Role       model.Role
	Provenance model.Provenance
	ExpiresAt  time.Time
}

type Strategy interface {
	IssueToken(session *model.Session) (string, error)
	ParseToken(token string) (*Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
