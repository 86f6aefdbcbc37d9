// Package memory keeps gateway state in process memory. It backs
// deployments without PostgreSQL or Redis and single-node development runs.
package memory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

type accountsFile struct {
	Accounts []model.FallbackAccount `yaml:"accounts"`
}

// LoadAccounts reads fallback accounts from a YAML file of the form
//
//	accounts:
//	  - userId: 1
//	    email: admin@example.com
//	    passwordHash: $2a$10$...
//	    role: ADMIN
func LoadAccounts(path string) ([]model.FallbackAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback accounts: %w", err)
	}
	return ParseAccounts(raw)
}

// ParseAccounts decodes and validates a fallback accounts document.
func ParseAccounts(raw []byte) ([]model.FallbackAccount, error) {
	var doc accountsFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse fallback accounts: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Accounts))
	for i := range doc.Accounts {
		a := &doc.Accounts[i]
		role, ok := model.ParseRole(string(a.Role))
		if !ok {
			return nil, fmt.Errorf("fallback account %q: unknown role %q", a.Email, a.Role)
		}
		a.Role = role
		email := normalizeEmail(a.Email)
		if email == "" || a.PasswordHash == "" {
			return nil, fmt.Errorf("fallback account %d: email and passwordHash are required", a.UserID)
		}
		if _, dup := seen[email]; dup {
			return nil, fmt.Errorf("fallback account %q listed twice", a.Email)
		}
		seen[email] = struct{}{}
	}
	return doc.Accounts, nil
}

// CredentialStore is a CredentialRepository keyed by case-folded email.
type CredentialStore struct {
	mu      sync.RWMutex
	byEmail map[string]model.FallbackAccount
}

// NewCredentialStore returns a store holding accounts.
func NewCredentialStore(accounts ...model.FallbackAccount) *CredentialStore {
	s := &CredentialStore{byEmail: make(map[string]model.FallbackAccount, len(accounts))}
	for _, a := range accounts {
		s.byEmail[normalizeEmail(a.Email)] = a
	}
	return s
}

func (s *CredentialStore) GetByEmail(_ context.Context, email string) (*model.FallbackAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &a, nil
}

// Upsert replaces any account with the same user id or email.
func (s *CredentialStore) Upsert(_ context.Context, account model.FallbackAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, existing := range s.byEmail {
		if existing.UserID == account.UserID {
			delete(s.byEmail, email)
		}
	}
	s.byEmail[normalizeEmail(account.Email)] = account
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
