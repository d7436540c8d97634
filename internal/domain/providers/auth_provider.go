package providers

import (
	"context"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// AuthProvider is the session capability injected into every component
// that acts on behalf of a user.
type AuthProvider interface {
	TokenSource

	// CurrentUser returns the signed-in user or an UNAUTHORIZED error
	CurrentUser(ctx context.Context) (*entities.User, error)

	// Login exchanges credentials for a session and stores it
	Login(ctx context.Context, email, password string) (*entities.User, error)

	// Register creates an account and stores the returned session
	Register(ctx context.Context, req RegisterRequest) (*entities.User, error)

	// Logout ends the session locally and on the backend
	Logout(ctx context.Context) error
}

// RegisterRequest is the account creation payload
type RegisterRequest struct {
	FullName string        `json:"fullName"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Role     entities.Role `json:"role"`
}

// SessionStore persists the session between runs
type SessionStore interface {
	// Load returns the stored session, or nil when none is stored
	Load(ctx context.Context) (*entities.Session, error)
	Save(ctx context.Context, session *entities.Session) error
	Clear(ctx context.Context) error
}
