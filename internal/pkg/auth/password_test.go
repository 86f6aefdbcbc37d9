package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasherCost(t *testing.T) {
	for _, cost := range []int{0, -1, bcrypt.MinCost - 1} {
		if got := NewBcryptHasher(cost).cost; got != bcrypt.DefaultCost {
			t.Fatalf("cost %d: expected default, got %d", cost, got)
		}
	}
	if got := NewBcryptHasher(bcrypt.MinCost).cost; got != bcrypt.MinCost {
		t.Fatalf("unexpected cost: %d", got)
	}
}

func TestBcryptHasherHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := hasher.Compare(hash, "secret"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestBcryptHasherCorruptHash(t *testing.T) {
	err := NewBcryptHasher(0).Compare("not-a-bcrypt-hash", "secret")
	if err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected hash error distinct from mismatch, got %v", err)
	}
}

func TestBcryptHasherHashError(t *testing.T) {
	hasher := &BcryptHasher{cost: bcrypt.MaxCost + 1}
	if _, err := hasher.Hash("password"); err == nil {
		t.Fatal("expected hash error for invalid cost")
	}
}
