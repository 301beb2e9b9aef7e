package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	portmocks "github.com/fieldops/fieldops-api/internal/mocks"
	"github.com/fieldops/fieldops-api/internal/ports"
)

// These tests use the generated port mocks where exact call counts and
// ordering matter; the hand-written fakes in internal/mocks/auth cover the
// state-based cases.

func TestAuthService_Authenticate_VerifierSeesBareToken(t *testing.T) {
	ctrl := gomock.NewController(t)

	verifier := portmocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().
		VerifyToken(gomock.Any(), "tok-123").
		Return(domainauth.Identity{ID: "u1", Token: "tok-123"}, nil).
		Times(1)

	svc := NewAuthService(AuthServiceOptions{
		Verifier:  verifier,
		Directory: portmocks.NewMockAccountDirectory(ctrl),
		Profiles:  portmocks.NewMockProfileStore(ctrl),
	})

	ident, err := svc.Authenticate(context.Background(), "Bearer tok-123")

	require.NoError(t, err)
	assert.Equal(t, "u1", ident.ID)
}

// Losing the first-use insert race must trigger exactly one re-read of the
// winning row, no retry loop and no second insert.
func TestAuthService_ResolveProfile_ConflictRereadsExactlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	ident := domainauth.Identity{ID: "u9", Token: "tok"}
	winner := domainauth.AccessProfile{
		ID:     "u9",
		Name:   "u9@example.com",
		Role:   domainauth.RoleWarehousePicking,
		Active: true,
	}

	directory := portmocks.NewMockAccountDirectory(ctrl)
	directory.EXPECT().
		AccountEmail(gomock.Any(), ident).
		Return("u9@example.com", nil).
		Times(1)

	profiles := portmocks.NewMockProfileStore(ctrl)
	gomock.InOrder(
		profiles.EXPECT().
			Get(gomock.Any(), "u9").
			Return(domainauth.AccessProfile{}, ports.ErrProfileNotFound),
		profiles.EXPECT().
			InsertIfAbsent(gomock.Any(), gomock.Any()).
			Return(ports.ErrProfileExists),
		profiles.EXPECT().
			Get(gomock.Any(), "u9").
			Return(winner, nil),
	)

	svc := NewAuthService(AuthServiceOptions{
		Verifier:  portmocks.NewMockTokenVerifier(ctrl),
		Directory: directory,
		Profiles:  profiles,
	})

	profile, err := svc.ResolveProfile(context.Background(), ident)

	require.NoError(t, err)
	assert.Equal(t, winner, profile)
}

// A store failure during the lookup must surface as-is wrapped, without any
// provisioning attempt.
func TestAuthService_ResolveProfile_LookupFailureSkipsProvisioning(t *testing.T) {
	ctrl := gomock.NewController(t)
	ident := domainauth.Identity{ID: "u2", Token: "tok"}

	profiles := portmocks.NewMockProfileStore(ctrl)
	profiles.EXPECT().
		Get(gomock.Any(), "u2").
		Return(domainauth.AccessProfile{}, assert.AnError).
		Times(1)

	svc := NewAuthService(AuthServiceOptions{
		Verifier:  portmocks.NewMockTokenVerifier(ctrl),
		Directory: portmocks.NewMockAccountDirectory(ctrl),
		Profiles:  profiles,
	})

	_, err := svc.ResolveProfile(context.Background(), ident)

	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	assert.ErrorIs(t, err, assert.AnError)
}
