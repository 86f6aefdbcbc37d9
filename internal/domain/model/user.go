package model

import (
	"strings"
	"time"
)

// Role is the access level of a user account.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole normalizes a role name; unknown values yield false.
func ParseRole(raw string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return r, true
	}
	return "", false
}

// User represents an account owned by the user service.
type User struct {
	ID        int64     `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// FallbackAccount is a credential record of the secondary login source.
type FallbackAccount struct {
	UserID       int64  `yaml:"userId"`
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"passwordHash"`
	Role         Role   `yaml:"role"`
	FirstName    string `yaml:"firstName"`
	LastName     string `yaml:"lastName"`
}

// Credentials are submitted by the client on login.
type Credentials struct {
	Email    string
	Password string
}
