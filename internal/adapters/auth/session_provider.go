package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

// AuthAPI is the slice of the backend the provider talks to
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*entities.Session, error)
	Register(ctx context.Context, req providers.RegisterRequest) (*entities.Session, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*entities.User, error)
}

// SessionProvider implements providers.AuthProvider with bearer tokens kept
// in a SessionStore.
type SessionProvider struct {
	store providers.SessionStore
	api   AuthAPI
	now   func() time.Time
}

var _ providers.AuthProvider = (*SessionProvider)(nil)

// NewSessionProvider creates a new session provider
func NewSessionProvider(store providers.SessionStore, api AuthAPI) *SessionProvider {
	return &SessionProvider{
		store: store,
		api:   api,
		now:   time.Now,
	}
}

// Token returns the stored bearer token. No session yields an empty token
// so public endpoints still work.
func (p *SessionProvider) Token(ctx context.Context) (string, error) {
	session, err := p.session(ctx)
	if err != nil || session == nil {
		return "", err
	}
	return session.Token, nil
}

// CurrentUser returns the stored user, then the user described by the
// token claims, then asks the backend.
func (p *SessionProvider) CurrentUser(ctx context.Context) (*entities.User, error) {
	session, err := p.session(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewUnauthorizedError("not signed in, run login first")
	}
	if session.User != nil {
		return session.User, nil
	}

	if claims, err := parseClaims(session.Token); err == nil {
		if user := claims.user(); user != nil {
			return user, nil
		}
	}

	user, err := p.api.Me(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	session.User = user
	if err := p.store.Save(ctx, session); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("could not persist session user")
	}
	return user, nil
}

// Login exchanges credentials for a session and stores it
func (p *SessionProvider) Login(ctx context.Context, email, password string) (*entities.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password is required")
	}

	session, err := p.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return p.establish(ctx, session)
}

// Register creates an account and stores the returned session
func (p *SessionProvider) Register(ctx context.Context, req providers.RegisterRequest) (*entities.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" {
		return nil, apperrors.NewValidationError("full name is required")
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if len(req.Password) < 6 {
		return nil, apperrors.NewValidationError("password must be at least 6 characters")
	}
	if req.Role != entities.RolePatient && req.Role != entities.RoleDoctor {
		return nil, apperrors.NewValidationError("role must be PATIENT or DOCTOR")
	}

	session, err := p.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.establish(ctx, session)
}

// Logout ends the session on the backend and forgets it locally. The local
// session is cleared even when the backend call fails.
func (p *SessionProvider) Logout(ctx context.Context) error {
	session, err := p.store.Load(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	if err := p.api.Logout(ctx, session.Token); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("backend logout failed")
	}
	return p.store.Clear(ctx)
}

func (p *SessionProvider) establish(ctx context.Context, session *entities.Session) (*entities.User, error) {
	if claims, err := parseClaims(session.Token); err == nil {
		session.ExpiresAt = claims.ExpiresAt
		if session.User == nil {
			session.User = claims.user()
		}
	}
	if session.User == nil {
		user, err := p.api.Me(ctx, session.Token)
		if err != nil {
			return nil, err
		}
		session.User = user
	}
	if err := p.store.Save(ctx, session); err != nil {
		return nil, apperrors.NewInternalError("could not store session", err)
	}
	return session.User, nil
}

func (p *SessionProvider) session(ctx context.Context) (*entities.Session, error) {
	session, err := p.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("could not read session", err)
	}
	if session == nil {
		return nil, nil
	}
	if session.Expired(p.now()) {
		return nil, apperrors.NewUnauthorizedError("session expired, run login again")
	}
	return session, nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperrors.NewValidationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.NewValidationError("email address is not valid")
	}
	return nil
}
