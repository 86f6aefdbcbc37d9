package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/adapter/backend"
	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/domain/repository"
	"github.com/polkiloo/fosgateway/internal/logger"
	"github.com/polkiloo/fosgateway/internal/metrics"
	pkgAuth "github.com/polkiloo/fosgateway/internal/pkg/auth"
)

const sessionCreateAttempts = 3

// PrimaryAuthenticator is the user service as seen by the login flow.
type PrimaryAuthenticator interface {
	Probe(ctx context.Context) error
	Login(ctx context.Context, creds model.Credentials) (*backend.LoginResult, error)
}

// AuthOptions tune the login flow.
type AuthOptions struct {
	ProbeTimeout time.Duration
	SessionTTL   time.Duration
}

// AuthUseCase resolves logins through the user service and falls back to
// the local credential store only when the user service cannot answer.
type AuthUseCase struct {
	primary  PrimaryAuthenticator
	fallback repository.CredentialRepository
	sessions repository.SessionRepository
	hasher   pkgAuth.PasswordHasher
	tokens   pkgAuth.Strategy
	opts     AuthOptions
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(
	primary PrimaryAuthenticator,
	fallback repository.CredentialRepository,
	sessions repository.SessionRepository,
	hasher pkgAuth.PasswordHasher,
	tokens pkgAuth.Strategy,
	opts AuthOptions,
	log *zap.Logger,
	m *metrics.Metrics,
) *AuthUseCase {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 2 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &AuthUseCase{
		primary:  primary,
		fallback: fallback,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		opts:     opts,
		logger:   log,
		metrics:  m,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Login authenticates creds and opens a session annotated with the path
// that accepted it. It returns the session and its bearer token.
func (u *AuthUseCase) Login(ctx context.Context, creds model.Credentials) (*model.Session, string, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || strings.TrimSpace(creds.Password) == "" {
		u.metrics.LoginRejections.WithLabelValues("malformed").Inc()
		return nil, "", domainErrors.Reject(domainErrors.ErrMalformedRequest, "email and password are required")
	}
	log := u.logger.With(zap.String("email", logger.MaskEmail(creds.Email)))

	probeErr := u.probePrimary(ctx)
	if probeErr == nil {
		res, err := u.primary.Login(ctx, creds)
		switch {
		case err == nil:
			return u.open(ctx, res.User, model.ProvenancePrimary, res.Token)
		case errors.Is(err, backend.ErrRejected):
			u.metrics.LoginRejections.WithLabelValues("primary_rejected").Inc()
			return nil, "", domainErrors.Reject(domainErrors.ErrInvalidCredentials, "invalid credentials")
		case errors.Is(err, backend.ErrMalformed):
			u.metrics.LoginRejections.WithLabelValues("malformed").Inc()
			return nil, "", domainErrors.Reject(domainErrors.ErrMalformedRequest, "credentials rejected by user service")
		case errors.Is(err, backend.ErrAccountLocked):
			u.metrics.LoginRejections.WithLabelValues("account_locked").Inc()
			return nil, "", domainErrors.Reject(domainErrors.ErrAccountLocked, "account is not active")
		case ctx.Err() != nil:
			return nil, "", ctx.Err()
		case !backend.IsDegradation(err):
			return nil, "", fmt.Errorf("primary login: %w", err)
		}
		log.Warn("primary login failed, using fallback credentials", zap.Error(err))
	} else {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		log.Warn("user service unreachable, using fallback credentials", zap.Error(probeErr))
	}

	return u.attemptFallback(ctx, creds)
}

func (u *AuthUseCase) probePrimary(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, u.opts.ProbeTimeout)
	defer cancel()
	return u.primary.Probe(probeCtx)
}

func (u *AuthUseCase) attemptFallback(ctx context.Context, creds model.Credentials) (*model.Session, string, error) {
	account, err := u.fallback.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.metrics.LoginRejections.WithLabelValues("fallback_rejected").Inc()
			return nil, "", domainErrors.Reject(domainErrors.ErrInvalidCredentials, "invalid credentials")
		}
		return nil, "", fmt.Errorf("%w: fallback credentials: %v", domainErrors.ErrServiceUnavailable, err)
	}
	if err := u.hasher.Compare(account.PasswordHash, creds.Password); err != nil {
		if !errors.Is(err, pkgAuth.ErrPasswordMismatch) {
			u.logger.Error("fallback credential hash unusable", zap.Int64("user", account.UserID), zap.Error(err))
		}
		u.metrics.LoginRejections.WithLabelValues("fallback_rejected").Inc()
		return nil, "", domainErrors.Reject(domainErrors.ErrInvalidCredentials, "invalid credentials")
	}

	user := model.User{
		ID:        account.UserID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Role:      account.Role,
	}
	return u.open(ctx, user, model.ProvenanceFallback, "")
}

// open stores a new session and signs its token. A colliding id is retried
// with a fresh one.
func (u *AuthUseCase) open(ctx context.Context, user model.User, prov model.Provenance, upstream string) (*model.Session, string, error) {
	now := u.now()
	session := &model.Session{
		UserID:        user.ID,
		Email:         user.Email,
		Role:          user.Role,
		Provenance:    prov,
		IssuedAt:      now,
		ExpiresAt:     now.Add(u.opts.SessionTTL),
		UpstreamToken: upstream,
	}

	var err error
	for attempt := 0; attempt < sessionCreateAttempts; attempt++ {
		session.ID = u.newID()
		if err = u.sessions.Create(ctx, session); !errors.Is(err, domainErrors.ErrSessionExists) {
			break
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := u.tokens.IssueToken(session)
	if err != nil {
		_ = u.sessions.Delete(ctx, session.ID)
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	u.metrics.Logins.WithLabelValues(string(prov)).Inc()
	u.logger.Info("login succeeded",
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.String("provenance", string(prov)),
		zap.String("role", string(user.Role)),
	)
	return session, token, nil
}

// ResolveSession returns the live session a token refers to. Expired
// sessions are removed.
func (u *AuthUseCase) ResolveSession(ctx context.Context, token string) (*model.Session, error) {
	claims, err := u.parse(token)
	if err != nil {
		return nil, err
	}

	session, err := u.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.Reject(domainErrors.ErrSessionExpired, "session not found")
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domainErrors.Reject(domainErrors.ErrSessionExpired, "session does not match token")
	}
	if session.Expired(u.now()) {
		if err := u.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("expired session cleanup failed", zap.String("session", session.ID), zap.Error(err))
		}
		return nil, domainErrors.Reject(domainErrors.ErrSessionExpired, "session expired")
	}
	return session, nil
}

// Logout destroys the session behind token. Logging out twice is not an
// error.
func (u *AuthUseCase) Logout(ctx context.Context, token string) error {
	claims, err := u.parse(token)
	if err != nil {
		return err
	}
	if err := u.sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return err
	}
	return nil
}

func (u *AuthUseCase) parse(token string) (*pkgAuth.Claims, error) {
	if token == "" {
		return nil, domainErrors.Reject(domainErrors.ErrSessionExpired, "missing token")
	}
	claims, err := u.tokens.ParseToken(token)
	if err != nil {
		return nil, domainErrors.Reject(domainErrors.ErrSessionExpired, "invalid token")
	}
	return claims, nil
}
