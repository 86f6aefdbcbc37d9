package memory

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// SessionStore keeps sessions in a map. Expired entries are removed when
// the auth use case resolves them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]model.Session)}
}

func (s *SessionStore) Create(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return domainErrors.ErrSessionExists
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
