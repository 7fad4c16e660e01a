package auth

import (
	"errors"
	"time"
)

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleUser is a regular member: owns skills, sends and receives
	// exchange requests.
	RoleUser Role = "user"

	// RoleAdmin can manage any user's data and moderate content.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a user account may hold.
var ValidRoles = []Role{RoleUser, RoleAdmin}

// IsValidRole returns true if the role is a known account role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User is a credential record. Email is unique (case-sensitive, enforced by
// the store). RefreshTokenHash holds the SHA-256 of the currently valid
// refresh token, or empty when the user has no active session.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // never serialised
	Role             Role      `json:"role"`
	RefreshTokenHash string    `json:"-"` // never serialised
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PublicUser is the view of a user returned from register/login responses.
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public returns the externally visible view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{Name: u.Name, Email: u.Email}
}

// Sentinel errors for auth operations.
var (
	// ErrInvalidCredentials deliberately does not distinguish an unknown
	// email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailExists  = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrForbidden    = errors.New("insufficient permissions")
)
