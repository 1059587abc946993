package domain

import (
	"errors"
	"time"
)

const (
	RoleCustomer = "Customer"
	RoleManager  = "Manager"
	RoleAdmin    = "Admin"
)

// DefaultBalance is credited to every newly registered account.
const DefaultBalance = 100000.00

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrRoleNotAllowed     = errors.New("role not allowed")
)

// User models an account holder. Username and email are globally unique;
// the backing store's unique indexes are the arbiter, not any prior read.
type User struct {
	UID          string    `json:"uid"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidRole reports whether role is one of the closed role enumeration.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}
