package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/observability/metrics"
	"github.com/fieldops/fieldops-api/internal/observability/statsd"
	"github.com/fieldops/fieldops-api/internal/ports"
)

// Credential-stage sentinel errors. Both are unauthenticated application
// errors so the HTTP layer maps them to 401.
var (
	// ErrMissingCredential is returned when no Authorization header was presented.
	ErrMissingCredential = apperrors.Unauthenticated("authorization header is required")
	// ErrMalformedCredential is returned when the header is not of the form "Bearer <token>".
	ErrMalformedCredential = apperrors.Unauthenticated("authorization header must be of the form \"Bearer <token>\"")
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Verifier  ports.TokenVerifier
	Directory ports.AccountDirectory
	Profiles  ports.ProfileStore
	Logger    *slog.Logger
	// Metrics receives per-check counters and timings. Nil disables emission.
	Metrics statsd.Sink
}

// AuthService performs the request-time identity checks: credential
// verification against the external provider and lazy resolution of the
// caller's access profile. It holds no per-request state; every dependency is
// injected once at process start.
type AuthService struct {
	verifier  ports.TokenVerifier
	directory ports.AccountDirectory
	profiles  ports.ProfileStore
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		verifier:  opts.Verifier,
		directory: opts.Directory,
		profiles:  opts.Profiles,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Authenticate validates the Authorization header and verifies the bearer
// token with the identity provider. On success the returned Identity is
// immutable for the rest of the request.
func (s *AuthService) Authenticate(ctx context.Context, authorizationHeader string) (domainauth.Identity, error) {
	if authorizationHeader == "" {
		return domainauth.Identity{}, ErrMissingCredential
	}

	token, ok := bearerToken(authorizationHeader)
	if !ok {
		return domainauth.Identity{}, ErrMalformedCredential
	}

	start := time.Now()
	ident, err := s.verifier.VerifyToken(ctx, token)
	if err != nil {
		if apperrors.GetCode(err) == "" {
			// adapters type their failures; anything untyped is a provider fault
			err = apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "verify credential")
		}
		metrics.EmitAuthCheck(s.metrics, metrics.AuthCheck{
			Stage:    metrics.StageVerify,
			Result:   metrics.ResultError,
			Duration: time.Since(start),
			Err:      err,
		})
		return domainauth.Identity{}, err
	}
	metrics.EmitAuthCheck(s.metrics, metrics.AuthCheck{
		Stage:    metrics.StageVerify,
		Result:   metrics.ResultSuccess,
		Duration: time.Since(start),
	})
	return ident, nil
}

// bearerToken extracts the token from a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsRune(token, ' ') {
		return "", false
	}
	return token, true
}

// ResolveProfile returns the access profile for a verified identity,
// provisioning a default one on first use.
//
// The first request for a never-before-seen identity races with its
// concurrent twins on the store insert; the losers observe a conflict and
// re-read the winning row, so exactly one profile is ever materialized per
// identity id and every racer resolves the same profile.
func (s *AuthService) ResolveProfile(ctx context.Context, ident domainauth.Identity) (domainauth.AccessProfile, error) {
	profile, err := s.resolveProfile(ctx, ident)
	check := metrics.AuthCheck{Stage: metrics.StageProfile, Result: metrics.ResultSuccess}
	if err != nil {
		check.Result = metrics.ResultError
		check.Err = err
	}
	metrics.EmitAuthCheck(s.metrics, check)
	return profile, err
}

func (s *AuthService) resolveProfile(ctx context.Context, ident domainauth.Identity) (domainauth.AccessProfile, error) {
	existing, err := s.profiles.Get(ctx, ident.ID)
	switch {
	case err == nil:
		return existing, nil
	case errors.Is(err, ports.ErrProfileNotFound):
		return s.provisionProfile(ctx, ident)
	default:
		return domainauth.AccessProfile{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "profile lookup failed")
	}
}

// provisionProfile creates the default least-privileged profile for a
// first-time identity, yielding to a concurrently created row on conflict.
func (s *AuthService) provisionProfile(ctx context.Context, ident domainauth.Identity) (domainauth.AccessProfile, error) {
	email, err := s.directory.AccountEmail(ctx, ident)
	if err != nil {
		// Judgment call: an email lookup failure downgrades the display name
		// to the placeholder instead of failing the request.
		s.logger.WarnContext(ctx, "account email unavailable, using placeholder name",
			"identity_id", ident.ID, "error", err)
		email = ""
	}

	created := domainauth.NewDefaultProfile(ident.ID, email)

	switch insertErr := s.profiles.InsertIfAbsent(ctx, created); {
	case insertErr == nil:
		s.logger.InfoContext(ctx, "provisioned access profile",
			"identity_id", ident.ID, "role", string(created.Role))
		return created, nil

	case errors.Is(insertErr, ports.ErrProfileExists):
		// lost the first-use race; the winner's row is authoritative
		existing, getErr := s.profiles.Get(ctx, ident.ID)
		if getErr != nil {
			return domainauth.AccessProfile{}, apperrors.Wrap(getErr, apperrors.ErrCodeInternal,
				"profile re-read after concurrent creation failed")
		}
		return existing, nil

	default:
		return domainauth.AccessProfile{}, apperrors.Wrap(insertErr, apperrors.ErrCodeInternal, "profile creation failed")
	}
}
