// Package restidp implements the identity-provider port against a generic
// REST identity service (self-hosted directory, managed auth API). Provider
// responses are arbitrary JSON; the subject id and email are extracted with
// configurable JMESPath expressions so no vendor payload shape is hardwired.
package restidp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/ports"
)

// Default extraction expressions, matching the common `{"sub": ..., "email": ...}` shape.
const (
	DefaultIDExpr    = "sub"
	DefaultEmailExpr = "email"
)

// ProviderConfig holds configuration for the REST identity provider.
type ProviderConfig struct {
	// BaseURL is the identity service root, e.g. "https://id.example.com".
	BaseURL string
	// VerifyPath is the endpoint that validates the caller's bearer token and
	// returns the account document. Default "/user".
	VerifyPath string
	// AccountPath is the admin endpoint for account lookup by id; "{id}" is
	// substituted. Default "/admin/users/{id}".
	AccountPath string
	// AdminToken authenticates this service to the admin endpoint.
	AdminToken string
	// IDExpr and EmailExpr are JMESPath expressions applied to the provider's
	// JSON responses. Empty values use the defaults.
	IDExpr     string
	EmailExpr  string
	HTTPClient *http.Client // Optional, defaults to a 10s-timeout client
}

// Provider implements ports.IdentityProvider over HTTP.
type Provider struct {
	baseURL     string
	verifyPath  string
	accountPath string
	adminToken  string
	idExpr      string
	emailExpr   string
	httpClient  *http.Client
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider creates a REST identity provider, validating the extraction
// expressions up front.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base URL is required")
	}

	p := &Provider{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		verifyPath:  cfg.VerifyPath,
		accountPath: cfg.AccountPath,
		adminToken:  cfg.AdminToken,
		idExpr:      cfg.IDExpr,
		emailExpr:   cfg.EmailExpr,
		httpClient:  cfg.HTTPClient,
	}
	if p.verifyPath == "" {
		p.verifyPath = "/user"
	}
	if p.accountPath == "" {
		p.accountPath = "/admin/users/{id}"
	}
	if p.idExpr == "" {
		p.idExpr = DefaultIDExpr
	}
	if p.emailExpr == "" {
		p.emailExpr = DefaultEmailExpr
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	for _, expr := range []string{p.idExpr, p.emailExpr} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid extraction expression %q: %w", expr, err)
		}
	}
	return p, nil
}

// VerifyToken validates the bearer token by presenting it to the provider's
// verification endpoint and extracting the stable subject id.
func (p *Provider) VerifyToken(ctx context.Context, token string) (domainauth.Identity, error) {
	doc, err := p.getJSON(ctx, p.baseURL+p.verifyPath, "Bearer "+token)
	if err != nil {
		return domainauth.Identity{}, err
	}

	id, err := p.extractString(p.idExpr, doc)
	if err != nil || id == "" {
		return domainauth.Identity{}, apperrors.Unauthenticated("provider response has no subject id")
	}
	return domainauth.Identity{ID: id, Token: token}, nil
}

// AccountEmail looks up the account email through the admin endpoint.
func (p *Provider) AccountEmail(ctx context.Context, ident domainauth.Identity) (string, error) {
	path := strings.ReplaceAll(p.accountPath, "{id}", url.PathEscape(ident.ID))
	doc, err := p.getJSON(ctx, p.baseURL+path, "Bearer "+p.adminToken)
	if err != nil {
		return "", err
	}

	email, err := p.extractString(p.emailExpr, doc)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "extract account email")
	}
	return email, nil
}

// getJSON performs an authenticated GET and decodes the JSON body. Rejections
// (401/403) surface as unauthenticated; transport and server-side failures as
// unavailable.
func (p *Provider) getJSON(ctx context.Context, rawURL, authorization string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build provider request")
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "identity provider unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.Unauthenticated("identity provider rejected the credential")
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.Unavailable(fmt.Sprintf("identity provider returned status %d", resp.StatusCode))
	}

	var doc any
	if decodeErr := json.NewDecoder(resp.Body).Decode(&doc); decodeErr != nil {
		return nil, apperrors.Wrap(decodeErr, apperrors.ErrCodeUnavailable, "decode provider response")
	}
	return doc, nil
}

func (p *Provider) extractString(expr string, doc any) (string, error) {
	v, err := jmespath.Search(expr, doc)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", nil
	}
	return s, nil
}
