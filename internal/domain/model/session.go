package model

import "time"

// Provenance records which authentication path produced a session.
type Provenance string

const (
	ProvenancePrimary  Provenance = "PRIMARY"
	ProvenanceFallback Provenance = "FALLBACK"
)

// Session is an authenticated client session.
type Session struct {
	ID            string     `json:"sessionId"`
	UserID        int64      `json:"userId"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	Provenance    Provenance `json:"provenance"`
	IssuedAt      time.Time  `json:"issuedAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	UpstreamToken string     `json:"-"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// HasRole reports whether the session role is one of roles.
func (s *Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// StatusChangedEvent is published after an accepted status transition.
type StatusChangedEvent struct {
	ID        string      `json:"eventId"`
	OrderID   int64       `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedBy int64       `json:"changedBy"`
	At        time.Time   `json:"at"`
}
