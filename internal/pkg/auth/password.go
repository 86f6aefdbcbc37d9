package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch means the hash is valid but belongs to another password.
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher hashes and verifies fallback account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// BcryptHasher uses bcrypt to hash passwords.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates BcryptHasher. Costs below bcrypt.MinCost select
// the default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Compare checks password against hash. A wrong password yields
// ErrPasswordMismatch; any other error means the stored hash is unusable.
func (h *BcryptHasher) Compare(hash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
