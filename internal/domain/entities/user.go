package entities

import (
	"fmt"
	"strings"
	"time"
)

// Role is the role a user acts under
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes a role received from the wire or the command line.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// User represents the authenticated user
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`

	// CreatedAt is passed through as sent; the backend does not zone it.
	CreatedAt string `json:"createdAt,omitempty"`
}

// Session is a bearer token together with the user it was issued for.
type Session struct {
	Token     string    `json:"token"`
	User      *User     `json:"user,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the session carries a known expiry in the past.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
