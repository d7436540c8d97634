package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

// tokenClaims is what the client can read from a bearer token without the
// signing key. The backend stays the authority on validity.
type tokenClaims struct {
	UserID    string
	Email     string
	Role      entities.Role
	ExpiresAt time.Time
}

func parseClaims(token string) (*tokenClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	unverified, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parsing session token: %w", err)
	}
	claims, ok := unverified.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid session token claims")
	}

	out := &tokenClaims{}
	out.UserID, _ = claims["userId"].(string)
	if out.UserID == "" {
		out.UserID, _ = claims.GetSubject()
	}
	out.Email, _ = claims["email"].(string)
	if raw, _ := claims["role"].(string); raw != "" {
		if role, err := entities.ParseRole(raw); err == nil {
			out.Role = role
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// user returns the user described by the claims, or nil when they do not
// carry enough to act on.
func (c *tokenClaims) user() *entities.User {
	if c.UserID == "" || c.Role == "" {
		return nil
	}
	return &entities.User{ID: c.UserID, Email: c.Email, Role: c.Role}
}
