package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

const sessionPrefix = "fos:session:"

// sessionRecord is the stored form of a session. It keeps the upstream
// token, which the session's own JSON form omits.
type sessionRecord struct {
	Session       model.Session `json:"session"`
	UpstreamToken string        `json:"upstreamToken,omitempty"`
}

// SessionStore keeps sessions under fos:session:<id> with a TTL matching
// the session expiry.
type SessionStore struct {
	client     goredis.Cmdable
	defaultTTL time.Duration
	now        func() time.Time
}

// NewSessionStore returns a store. defaultTTL applies to sessions without an
// expiry.
func NewSessionStore(client goredis.Cmdable, defaultTTL time.Duration) *SessionStore {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &SessionStore{client: client, defaultTTL: defaultTTL, now: time.Now}
}

func encodeSession(session *model.Session) (string, error) {
	raw, err := json.Marshal(sessionRecord{Session: *session, UpstreamToken: session.UpstreamToken})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *SessionStore) ttl(session *model.Session) time.Duration {
	if session.ExpiresAt.IsZero() {
		return s.defaultTTL
	}
	ttl := session.ExpiresAt.Sub(s.now()).Truncate(time.Second)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// Create stores session unless its id is already taken.
func (s *SessionStore) Create(ctx context.Context, session *model.Session) error {
	value, err := encodeSession(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	created, err := s.client.SetNX(ctx, sessionPrefix+session.ID, value, s.ttl(session)).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !created {
		return domainErrors.ErrSessionExists
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	raw, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	session := rec.Session
	session.UpstreamToken = rec.UpstreamToken
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionPrefix+id).Err()
}
