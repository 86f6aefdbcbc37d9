package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

func testSession(now time.Time) *model.Session {
	return &model.Session{
		ID:         "sess-1",
		UserID:     42,
		Email:      "staff@example.com",
		Role:       model.RoleStaff,
		Provenance: model.ProvenanceFallback,
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
	}
}

func TestNewJWTStrategy_DefaultTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestJWTStrategy_IssueAndParse(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	now := time.Now().Truncate(time.Second)

	token, err := strategy.IssueToken(testSession(now))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	claims, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.SessionID != "sess-1" || claims.UserID != 42 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Role != model.RoleStaff || claims.Provenance != model.ProvenanceFallback {
		t.Fatalf("unexpected role/provenance: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %s", claims.ExpiresAt)
	}
}

func TestJWTStrategy_DefaultsExpiryToTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	now := time.Now().Truncate(time.Second)
	session := testSession(now)
	session.ExpiresAt = time.Time{}

	token, err := strategy.IssueToken(session)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	claims, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected expiry: %s", claims.ExpiresAt)
	}
}

func TestJWTStrategy_IssueRequiresSessionID(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if _, err := strategy.IssueToken(&model.Session{UserID: 1}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := strategy.IssueToken(nil); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseRejectsExpired(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	now := time.Now()
	token, err := strategy.IssueToken(testSession(now))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	strategy.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseRejectsForeignSignature(t *testing.T) {
	token, err := NewJWTStrategy("other", Options{}).IssueToken(testSession(time.Now()))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := NewJWTStrategy("secret", Options{}).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseRejectsGarbage(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if _, err := strategy.ParseToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseRejectsBadSubject(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	claims := sessionClaims{
		SessionID: "sess",
		Role:      "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseRejectsUnknownRole(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	claims := sessionClaims{
		SessionID: "sess",
		Role:      "ROOT",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_Name(t *testing.T) {
	if name := NewJWTStrategy("s", Options{}).Name(); name != "jwt" {
		t.Fatalf("unexpected name: %s", name)
	}
}
