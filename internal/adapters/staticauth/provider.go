// Package staticauth provides a config-driven identity provider for local
// development and tests. It accepts a single fixed token and returns the
// configured identity, skipping any network call.
package staticauth

import (
	"context"
	"crypto/subtle"
	"errors"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/ports"
)

// Config controls the static provider behavior. Token and UserID are
// required; Email may be empty to exercise the placeholder-name path.
type Config struct {
	Token  string
	UserID string
	Email  string
}

// Provider implements ports.IdentityProvider for AUTH_MODE=static.
type Provider struct {
	token  string
	userID string
	email  string
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a static provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Token == "" {
		return nil, errors.New("static auth: Token is required")
	}
	if cfg.UserID == "" {
		return nil, errors.New("static auth: UserID is required")
	}
	return &Provider{token: cfg.Token, userID: cfg.UserID, email: cfg.Email}, nil
}

// VerifyToken accepts only the configured token.
func (p *Provider) VerifyToken(_ context.Context, token string) (domainauth.Identity, error) {
	if subtle.ConstantTimeCompare([]byte(token), []byte(p.token)) != 1 {
		return domainauth.Identity{}, apperrors.Unauthenticated("token rejected")
	}
	return domainauth.Identity{ID: p.userID, Token: token}, nil
}

// AccountEmail returns the configured email for the configured identity.
func (p *Provider) AccountEmail(_ context.Context, ident domainauth.Identity) (string, error) {
	if ident.ID != p.userID {
		return "", apperrors.Unavailable("unknown account id")
	}
	return p.email, nil
}
