package test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/domain/repository"
)

// CredentialRepositoryStub is an in-memory fallback credential store that
// counts lookups.
type CredentialRepositoryStub struct {
	mu       sync.Mutex
	accounts map[string]model.FallbackAccount
	lookups  atomic.Int32

	GetErr error
}

// NewCredentialRepositoryStub seeds the store with accounts.
func NewCredentialRepositoryStub(accounts ...model.FallbackAccount) *CredentialRepositoryStub {
	s := &CredentialRepositoryStub{accounts: map[string]model.FallbackAccount{}}
	for _, a := range accounts {
		s.accounts[strings.ToLower(a.Email)] = a
	}
	return s
}

// GetByEmail looks an account up case-insensitively.
func (s *CredentialRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.FallbackAccount, error) {
	s.lookups.Add(1)
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &a, nil
}

// Upsert stores account.
func (s *CredentialRepositoryStub) Upsert(ctx context.Context, account model.FallbackAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(account.Email)] = account
	return nil
}

// Lookups returns the number of GetByEmail calls.
func (s *CredentialRepositoryStub) Lookups() int { return int(s.lookups.Load()) }

// SessionRepositoryStub keeps sessions in memory.
type SessionRepositoryStub struct {
	mu       sync.Mutex
	sessions map[string]model.Session

	CreateFn func(context.Context, *model.Session) error
}

// NewSessionRepositoryStub creates an empty store.
func NewSessionRepositoryStub() *SessionRepositoryStub {
	return &SessionRepositoryStub{sessions: map[string]model.Session{}}
}

// Create stores session unless its id is taken.
func (s *SessionRepositoryStub) Create(ctx context.Context, session *model.Session) error {
	if s.CreateFn != nil {
		if err := s.CreateFn(ctx, session); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return domainErrors.ErrSessionExists
	}
	s.sessions[session.ID] = *session
	return nil
}

// Get returns a copy of the stored session.
func (s *SessionRepositoryStub) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &session, nil
}

// Delete removes the session.
func (s *SessionRepositoryStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (s *SessionRepositoryStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EventPublisherStub records published events.
type EventPublisherStub struct {
	mu     sync.Mutex
	events []model.StatusChangedEvent

	Err error
}

// PublishStatusChanged records event and returns Err.
func (s *EventPublisherStub) PublishStatusChanged(ctx context.Context, event model.StatusChangedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.Err
}

// Events returns a copy of the recorded events.
func (s *EventPublisherStub) Events() []model.StatusChangedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.StatusChangedEvent(nil), s.events...)
}

var (
	_ repository.CredentialRepository = (*CredentialRepositoryStub)(nil)
	_ repository.SessionRepository    = (*SessionRepositoryStub)(nil)
	_ repository.EventPublisher       = (*EventPublisherStub)(nil)
)
