package errors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is not active")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnknownStatus      = errors.New("unknown order status")
	ErrMalformedRequest   = errors.New("malformed request")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionExists      = errors.New("session already exists")
	ErrRefreshInProgress  = errors.New("refresh already in progress")
)

// Rejection is a typed refusal returned to the caller instead of a failure.
// Kind is one of the sentinels above and is matched through errors.Is.
type Rejection struct {
	Kind   error
	Reason string
}

// Reject builds a Rejection of the given kind.
func Reject(kind error, reason string) *Rejection {
	return &Rejection{Kind: kind, Reason: reason}
}

func (r *Rejection) Error() string {
	if r.Reason == "" {
		return r.Kind.Error()
	}
	return r.Kind.Error() + ": " + r.Reason
}

func (r *Rejection) Unwrap() error {
	return r.Kind
}

// IsRejection reports whether err carries a Rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
