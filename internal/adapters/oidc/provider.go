// Package oidc implements the identity-provider port against an OIDC issuer.
// Bearer tokens are verified locally against the issuer's JWKS; account email
// comes from the verified claims, falling back to the UserInfo endpoint.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/ports"
)

// Provider implements ports.IdentityProvider using OIDC.
type Provider struct {
	httpClient   *http.Client
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.IdentityProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	DiscoveryURL string
	// SkipClientIDCheck disables audience validation for providers that issue
	// access tokens without an aud claim matching the client.
	SkipClientIDCheck bool
	HTTPClient        *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. The discovery document is fetched
// once at construction; the provider instance is built at process start and
// injected everywhere it is needed.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if config.ClientID == "" && !config.SkipClientIDCheck {
		return nil, errors.New("client ID is required unless audience checks are skipped")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		httpClient:   httpClient,
		oidcProvider: op,
		verifier: op.Verifier(&gooidc.Config{
			ClientID:          config.ClientID,
			SkipClientIDCheck: config.SkipClientIDCheck,
		}),
	}, nil
}

// tokenClaims is the subset of claims this service interprets.
type tokenClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// VerifyToken validates a bearer token and returns the verified identity.
// A rejected token is an unauthenticated error; a keyset/transport failure is
// an unavailable one.
func (p *Provider) VerifyToken(ctx context.Context, token string) (domainauth.Identity, error) {
	idTok, err := p.verifier.Verify(ctx, token)
	if err != nil {
		if isTransportErr(err) {
			return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "identity provider unreachable")
		}
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "token rejected")
	}

	var claims tokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, apperrors.Wrap(claimsErr, apperrors.ErrCodeUnauthenticated, "token claims unreadable")
	}
	if claims.Sub == "" {
		return domainauth.Identity{}, apperrors.Unauthenticated("token has no subject")
	}

	return domainauth.Identity{ID: claims.Sub, Token: token}, nil
}

// AccountEmail returns the account email for a verified identity. The email
// claim from the token is preferred; UserInfo is the fallback for issuers
// that omit it.
func (p *Provider) AccountEmail(ctx context.Context, ident domainauth.Identity) (string, error) {
	idTok, err := p.verifier.Verify(ctx, ident.Token)
	if err == nil {
		var claims tokenClaims
		if claimsErr := idTok.Claims(&claims); claimsErr == nil && claims.Email != "" {
			return claims.Email, nil
		}
	}

	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: ident.Token}))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "fetch user info")
	}
	var claims tokenClaims
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return "", apperrors.Wrap(claimsErr, apperrors.ErrCodeUnavailable, "decode user info")
	}
	return claims.Email, nil
}

// isTransportErr reports whether err looks like a network/provider-side
// failure rather than a rejection of the presented token.
func isTransportErr(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
