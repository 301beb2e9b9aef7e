package staticauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

func TestNewProvider_RequiresTokenAndUserID(t *testing.T) {
	_, err := NewProvider(Config{UserID: "dev-user"})
	require.Error(t, err)

	_, err = NewProvider(Config{Token: "dev-token"})
	require.Error(t, err)
}

func TestProvider_VerifyToken(t *testing.T) {
	p, err := NewProvider(Config{Token: "dev-token", UserID: "dev-user", Email: "dev@example.com"})
	require.NoError(t, err)

	ident, err := p.VerifyToken(context.Background(), "dev-token")
	require.NoError(t, err)
	assert.Equal(t, "dev-user", ident.ID)

	_, err = p.VerifyToken(context.Background(), "other")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestProvider_AccountEmail(t *testing.T) {
	p, err := NewProvider(Config{Token: "dev-token", UserID: "dev-user", Email: "dev@example.com"})
	require.NoError(t, err)

	ident, err := p.VerifyToken(context.Background(), "dev-token")
	require.NoError(t, err)

	email, err := p.AccountEmail(context.Background(), ident)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", email)
}
