package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/fieldops/fieldops-api/config"
	"github.com/fieldops/fieldops-api/internal/adapters/oidc"
	redisadapter "github.com/fieldops/fieldops-api/internal/adapters/redis"
	"github.com/fieldops/fieldops-api/internal/adapters/restidp"
	"github.com/fieldops/fieldops-api/internal/adapters/staticauth"
	"github.com/fieldops/fieldops-api/internal/observability/statsd"
	"github.com/fieldops/fieldops-api/internal/ports"
	"github.com/fieldops/fieldops-api/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	IsDev       bool
	RedisClient redis.UniversalClient
	Profiles    ports.ProfileStore
	Logger      *slog.Logger
	Metrics     statsd.Sink
}

// BuildAuthService creates the auth service for the configured auth mode.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	provider, err := buildIdentityProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var verifier ports.TokenVerifier = provider
	if cfg.RedisClient != nil && cfg.Auth.VerifyCacheTTL > 0 {
		verifier = redisadapter.NewVerificationCache(cfg.RedisClient, provider, cfg.Auth.VerifyCacheTTL)
		if cfg.Logger != nil {
			cfg.Logger.Info("token verification cache enabled", "ttl", cfg.Auth.VerifyCacheTTL)
		}
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Verifier:  verifier,
		Directory: provider,
		Profiles:  cfg.Profiles,
		Logger:    cfg.Logger,
		Metrics:   cfg.Metrics,
	}), nil
}

//nolint:ireturn // callers need the port, not a concrete adapter.
func buildIdentityProvider(ctx context.Context, cfg AuthConfig) (ports.IdentityProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeStatic:
		if !cfg.IsDev {
			return nil, fmt.Errorf("auth mode %q is only allowed in development", cfg.Auth.Mode)
		}
		return staticauth.NewProvider(staticauth.Config{
			Token:  cfg.Auth.Static.Token,
			UserID: cfg.Auth.Static.Identity,
			Email:  cfg.Auth.Static.Email,
		})

	case config.AuthModeRest:
		if cfg.Auth.Rest.BaseURL == "" {
			return nil, fmt.Errorf("auth mode %q requires REST_IDP_BASE_URL", cfg.Auth.Mode)
		}
		return restidp.NewProvider(restidp.ProviderConfig{
			BaseURL:     cfg.Auth.Rest.BaseURL,
			VerifyPath:  cfg.Auth.Rest.VerifyPath,
			AccountPath: cfg.Auth.Rest.AccountPath,
			AdminToken:  cfg.Auth.Rest.AdminToken,
			IDExpr:      cfg.Auth.Rest.IDExpr,
			EmailExpr:   cfg.Auth.Rest.EmailExpr,
		})

	case config.AuthModeOIDC:
		if cfg.Auth.OIDC.DiscoveryURL == "" {
			return nil, fmt.Errorf("auth mode %q requires OIDC_DISCOVERY_URL", cfg.Auth.Mode)
		}
		return oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:          cfg.Auth.OIDC.ClientID,
			DiscoveryURL:      cfg.Auth.OIDC.DiscoveryURL,
			SkipClientIDCheck: cfg.Auth.OIDC.SkipClientIDCheck,
		})

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
