package bookingapi

import (
	"context"
	"net/http"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

// Auth endpoints take the token explicitly: they run before a session
// exists or while it is being torn down.

// Login exchanges credentials for a session
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*entities.Session, error) {
	var out authResponseDTO
	err := c.doJSON(ctx, request{
		method:    http.MethodPost,
		route:     "/api/auth/login",
		path:      "/api/auth/login",
		body:      loginRequestDTO{Email: email, Password: password},
		anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toSession()
}

// Register creates an account and returns its first session
func (c *HTTPClient) Register(ctx context.Context, req providers.RegisterRequest) (*entities.Session, error) {
	var out authResponseDTO
	err := c.doJSON(ctx, request{
		method:    http.MethodPost,
		route:     "/api/auth/register",
		path:      "/api/auth/register",
		body:      req,
		anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toSession()
}

// Logout tells the backend the session is over
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/api/auth/logout",
		path:   "/api/auth/logout",
		token:  token,
	}, nil)
}

// Me returns the user the token belongs to
func (c *HTTPClient) Me(ctx context.Context, token string) (*entities.User, error) {
	var out userDTO
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		route:  "/api/auth/me",
		path:   "/api/auth/me",
		token:  token,
	}, &out)
	if err != nil {
		return nil, err
	}
	user, err := out.toEntity()
	if err != nil {
		return nil, apperrors.NewInternalError("malformed user", err)
	}
	return user, nil
}

func (d authResponseDTO) toSession() (*entities.Session, error) {
	if d.Token == "" {
		return nil, apperrors.NewInternalError("auth response carried no token", nil)
	}
	session := &entities.Session{Token: d.Token}
	if d.User != nil {
		user, err := d.User.toEntity()
		if err != nil {
			return nil, apperrors.NewInternalError("malformed user", err)
		}
		session.User = user
	}
	return session, nil
}
