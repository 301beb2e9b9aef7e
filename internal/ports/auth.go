package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
)

// Sentinel errors forming part of the port contracts below. Implementations
// must return (or wrap) these so the resolver can branch on them.
var (
	// ErrProfileNotFound is returned by ProfileStore.Get when no profile
	// exists for the id. A not-found result is distinct from a lookup failure.
	ErrProfileNotFound = errors.New("access profile not found")

	// ErrProfileExists is returned by ProfileStore.InsertIfAbsent when a
	// profile for the id was already materialized, typically by a concurrent
	// first-time request.
	ErrProfileExists = errors.New("access profile already exists")
)

// TokenVerifier validates an opaque bearer credential against the external
// identity provider and returns the verified identity.
//
// A rejected token must surface as an unauthenticated application error; a
// transport or provider-side failure as an unavailable one. Adapters use the
// internal/errors constructors for this distinction.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domainauth.Identity, error)
}

// AccountDirectory looks up account attributes held by the identity provider.
// The full Identity is passed because some providers resolve attributes with
// the caller's own credential (UserInfo) rather than an admin lookup by id.
type AccountDirectory interface {
	AccountEmail(ctx context.Context, ident domainauth.Identity) (string, error)
}

// IdentityProvider is the narrow port to the external identity provider.
// Any concrete provider (managed auth service, self-hosted directory)
// satisfies it; the core never hardwires a vendor client.
type IdentityProvider interface {
	TokenVerifier
	AccountDirectory
}

// ProfileStore is the persistent mapping from identity id to AccessProfile.
// InsertIfAbsent must be uniqueness-enforcing on the id: the loser of a
// concurrent first-time race observes ErrProfileExists, not a generic error.
type ProfileStore interface {
	Get(ctx context.Context, id string) (domainauth.AccessProfile, error)
	InsertIfAbsent(ctx context.Context, profile domainauth.AccessProfile) error
}
