package httpx

import (
	"context"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
)

// identityKey and profileKey are unexported context key types to avoid
// collisions across packages. Centralized in this file so all
// handlers/middleware use the same keys.
type identityKey struct{}

type profileKey struct{}

// SetIdentityInContext returns a child context carrying the verified identity.
func SetIdentityInContext(ctx context.Context, ident domainauth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// GetIdentityFromContext returns the verified identity from context and a
// boolean indicating presence.
func GetIdentityFromContext(ctx context.Context) (domainauth.Identity, bool) {
	ident, ok := ctx.Value(identityKey{}).(domainauth.Identity)
	return ident, ok
}

// SetProfileInContext returns a child context carrying the resolved access profile.
func SetProfileInContext(ctx context.Context, profile domainauth.AccessProfile) context.Context {
	return context.WithValue(ctx, profileKey{}, profile)
}

// GetProfileFromContext returns the access profile from context and a boolean
// indicating presence. Handlers behind RequireRole can rely on presence.
func GetProfileFromContext(ctx context.Context) (domainauth.AccessProfile, bool) {
	profile, ok := ctx.Value(profileKey{}).(domainauth.AccessProfile)
	return profile, ok
}
