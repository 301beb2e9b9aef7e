// Package auth contains simple hand-written test doubles for the identity
// and profile ports. These are lightweight and suitable for unit tests
// without codegen.
package auth

import (
	"context"
	"sync"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenVerifier    = (*MockVerifier)(nil)
	_ ports.AccountDirectory = (*StaticDirectory)(nil)
	_ ports.ProfileStore     = (*MemoryProfileStore)(nil)
)

// MockVerifier simulates a token verifier with per-token identities.
type MockVerifier struct {
	VerifyFunc func(ctx context.Context, token string) (domainauth.Identity, error)

	// Tokens maps accepted bearer tokens to identity ids. Used when
	// VerifyFunc is nil.
	Tokens map[string]string

	mu    sync.Mutex
	calls int
}

func (m *MockVerifier) VerifyToken(ctx context.Context, token string) (domainauth.Identity, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	if id, ok := m.Tokens[token]; ok {
		return domainauth.Identity{ID: id, Token: token}, nil
	}
	return domainauth.Identity{}, ErrRejected
}

// Calls returns how many times VerifyToken was invoked.
func (m *MockVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ErrRejected is returned by MockVerifier for unknown tokens. It is typed
// unauthenticated, matching what the real provider adapters return.
var ErrRejected = apperrors.Unauthenticated("token rejected")

// StaticDirectory resolves account emails from a fixed map.
type StaticDirectory struct {
	EmailFunc func(ctx context.Context, ident domainauth.Identity) (string, error)

	// Emails maps identity ids to account emails. Used when EmailFunc is nil.
	Emails map[string]string
}

func (d *StaticDirectory) AccountEmail(ctx context.Context, ident domainauth.Identity) (string, error) {
	if d.EmailFunc != nil {
		return d.EmailFunc(ctx, ident)
	}
	return d.Emails[ident.ID], nil
}

// MemoryProfileStore is an in-memory profile store for unit tests. It honors
// the same first-writer-wins contract as the Postgres implementation, so
// concurrent provisioning tests behave like production.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domainauth.AccessProfile

	// GetErr and InsertErr force failures for error-path tests.
	GetErr    error
	InsertErr error

	inserts int
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]domainauth.AccessProfile)}
}

func (m *MemoryProfileStore) Get(_ context.Context, id string) (domainauth.AccessProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return domainauth.AccessProfile{}, m.GetErr
	}
	profile, ok := m.profiles[id]
	if !ok {
		return domainauth.AccessProfile{}, ports.ErrProfileNotFound
	}
	return profile, nil
}

func (m *MemoryProfileStore) InsertIfAbsent(_ context.Context, profile domainauth.AccessProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return m.InsertErr
	}
	if _, exists := m.profiles[profile.ID]; exists {
		return ports.ErrProfileExists
	}
	m.profiles[profile.ID] = profile
	m.inserts++
	return nil
}

// Put seeds a profile directly, bypassing the insert counter.
func (m *MemoryProfileStore) Put(profile domainauth.AccessProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
}

// Inserts returns how many profiles were created through InsertIfAbsent.
func (m *MemoryProfileStore) Inserts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}
