package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects which identity provider adapter verifies bearer tokens.
type AuthMode string

const (
	// AuthModeOIDC verifies tokens against an OIDC issuer's JWKS.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeRest verifies tokens by calling a REST identity provider.
	AuthModeRest AuthMode = "rest"
	// AuthModeStatic accepts a single fixed token (development only).
	AuthModeStatic AuthMode = "static"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "rest", "static":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, rest, static)", v)
	}
}

// OIDCConfig contains OIDC verifier configuration (used when Mode=oidc).
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"      envDefault:"fieldops"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// SkipClientIDCheck disables audience validation. Only useful against
	// providers that issue tokens without an aud claim.
	SkipClientIDCheck bool `env:"SKIP_CLIENT_ID_CHECK" envDefault:"false"`
}

// RestIDPConfig contains REST identity provider configuration (used when
// Mode=rest). The JMESPath expressions pick the subject id and email out of
// the provider's JSON responses.
type RestIDPConfig struct {
	BaseURL     string `env:"BASE_URL"`
	VerifyPath  string `env:"VERIFY_PATH"  envDefault:"/user"`
	AccountPath string `env:"ACCOUNT_PATH" envDefault:"/admin/users/{id}"`
	AdminToken  string `env:"ADMIN_TOKEN"`
	IDExpr      string `env:"ID_EXPR"      envDefault:"sub"`
	EmailExpr   string `env:"EMAIL_EXPR"   envDefault:"email"`
}

// StaticAuthConfig controls the fixed-token development provider
// (used when Mode=static).
type StaticAuthConfig struct {
	Token    string `env:"TOKEN"    envDefault:"dev-token"`
	Identity string `env:"IDENTITY" envDefault:"dev-user"`
	Email    string `env:"EMAIL"    envDefault:"dev@example.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider adapter to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// Rest configuration (used when Mode=rest).
	Rest RestIDPConfig `envPrefix:"REST_IDP_"`

	// Static configuration (used when Mode=static).
	Static StaticAuthConfig `envPrefix:"STATIC_AUTH_"`

	// VerifyCacheTTL is how long a positive token verification is cached in
	// Redis. Zero or negative disables the cache.
	VerifyCacheTTL time.Duration `env:"AUTH_VERIFY_CACHE_TTL" envDefault:"1m"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.VerifyCacheTTL < 0 {
		a.VerifyCacheTTL = 0
	}
	a.Rest.BaseURL = strings.TrimRight(strings.TrimSpace(a.Rest.BaseURL), "/")
}
