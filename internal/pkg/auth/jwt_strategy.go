package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

const issuer = "fos-gateway"

type sessionClaims struct {
	SessionID  string `json:"sid"`
	Role       string `json:"role"`
	Provenance string `json:"prov"`
	jwt.RegisteredClaims
}

// JWTStrategy signs session tokens as HS256 JWTs. The token only points at
// a stored session; revocation happens by deleting the session.
type JWTStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs a token for session. The token expires with the session,
// or after the strategy TTL when the session carries no expiry.
func (s *JWTStrategy) IssueToken(session *model.Session) (string, error) {
	if session == nil || session.ID == "" {
		return "", fmt.Errorf("issue token: %w", ErrInvalidToken)
	}
	issued := session.IssuedAt
	if issued.IsZero() {
		issued = s.now()
	}
	expires := session.ExpiresAt
	if expires.IsZero() {
		expires = issued.Add(s.ttl)
	}

	claims := sessionClaims{
		SessionID:  session.ID,
		Role:       string(session.Role),
		Provenance: string(session.Provenance),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(session.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates signature and expiry and returns the claims.
func (s *JWTStrategy) ParseToken(token string) (*Claims, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return nil, ErrInvalidToken
	}

	out := &Claims{
		SessionID:  claims.SessionID,
		UserID:     userID,
		Role:       role,
		Provenance: model.Provenance(claims.Provenance),
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}
