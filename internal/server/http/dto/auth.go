package dto

import (
	"time"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// LoginRequest describes the email/password payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes an authenticated session.
type SessionResponse struct {
	SessionID  string           `json:"sessionId"`
	UserID     int64            `json:"userId"`
	Email      string           `json:"email"`
	Role       model.Role       `json:"role"`
	Provenance model.Provenance `json:"provenance"`
	ExpiresAt  time.Time        `json:"expiresAt"`
}

// LoginResponse carries the issued token and its session.
type LoginResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

// NewSessionResponse converts a session for the wire.
func NewSessionResponse(s *model.Session) SessionResponse {
	return SessionResponse{
		SessionID:  s.ID,
		UserID:     s.UserID,
		Email:      s.Email,
		Role:       s.Role,
		Provenance: s.Provenance,
		ExpiresAt:  s.ExpiresAt,
	}
}
