package test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	pkgAuth "github.com/polkiloo/fosgateway/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return pkgAuth.ErrPasswordMismatch
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides. By default
// the token is "token:<session id>:<user id>".
type StrategyStub struct {
	IssueFn func(*model.Session) (string, error)
	ParseFn func(string) (*pkgAuth.Claims, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(session *model.Session) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(session)
	}
	return fmt.Sprintf("token:%s:%d", session.ID, session.UserID), nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (*pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "token" || parts[1] == "" {
		return nil, pkgAuth.ErrInvalidToken
	}
	userID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, pkgAuth.ErrInvalidToken
	}
	return &pkgAuth.Claims{SessionID: parts[1], UserID: userID}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// PrimaryAuthenticatorStub simulates the user service login path.
type PrimaryAuthenticatorStub struct {
	ProbeErr error
	ProbeFn  func(context.Context) error
	LoginFn  func(context.Context, model.Credentials) (*backend.LoginResult, error)

	probes atomic.Int32
	logins atomic.Int32
}

// Probe reports the configured reachability.
func (s *PrimaryAuthenticatorStub) Probe(ctx context.Context) error {
	s.probes.Add(1)
	if s.ProbeFn != nil {
		return s.ProbeFn(ctx)
	}
	return s.ProbeErr
}

// Login delegates to LoginFn or accepts any credentials as a customer.
func (s *PrimaryAuthenticatorStub) Login(ctx context.Context, creds model.Credentials) (*backend.LoginResult, error) {
	s.logins.Add(1)
	if s.LoginFn != nil {
		return s.LoginFn(ctx, creds)
	}
	return &backend.LoginResult{
		User:  model.User{ID: 1, Email: creds.Email, Role: model.RoleCustomer},
		Token: "upstream",
	}, nil
}

// Probes returns the number of Probe calls.
func (s *PrimaryAuthenticatorStub) Probes() int { return int(s.probes.Load()) }

// Logins returns the number of Login calls.
func (s *PrimaryAuthenticatorStub) Logins() int { return int(s.logins.Load()) }

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	LoginFn   func(context.Context, string, string) (*model.Session, string, error)
	LogoutFn  func(context.Context, string) error
	ResolveFn func(context.Context, string) (*model.Session, error)
}

// Login returns a primary customer session by default.
func (s AuthFacadeStub) Login(ctx context.Context, email, password string) (*model.Session, string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, email, password)
	}
	return &model.Session{ID: "sess", UserID: 1, Email: email, Role: model.RoleCustomer, Provenance: model.ProvenancePrimary}, "token", nil
}

// Logout succeeds unless overridden.
func (s AuthFacadeStub) Logout(ctx context.Context, token string) error {
	if s.LogoutFn != nil {
		return s.LogoutFn(ctx, token)
	}
	return nil
}

// ResolveSession returns an admin session by default.
func (s AuthFacadeStub) ResolveSession(ctx context.Context, token string) (*model.Session, error) {
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, token)
	}
	return &model.Session{ID: "sess", UserID: 1, Role: model.RoleAdmin, Provenance: model.ProvenancePrimary}, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
