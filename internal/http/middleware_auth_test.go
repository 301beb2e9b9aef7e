package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	mocks "github.com/fieldops/fieldops-api/internal/mocks/auth"
	"github.com/fieldops/fieldops-api/internal/service"
)

type authFixture struct {
	svc      *service.AuthService
	store    *mocks.MemoryProfileStore
	verifier *mocks.MockVerifier
}

func newAuthFixture() *authFixture {
	verifier := &mocks.MockVerifier{Tokens: map[string]string{"good-token": "u1"}}
	store := mocks.NewMemoryProfileStore()
	directory := &mocks.StaticDirectory{Emails: map[string]string{"u1": "u1@example.com"}}
	svc := service.NewAuthService(service.AuthServiceOptions{
		Verifier:  verifier,
		Directory: directory,
		Profiles:  store,
	})
	return &authFixture{svc: svc, store: store, verifier: verifier}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, handler http.Handler, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestRequireAuth_StatusMatrix(t *testing.T) {
	fixture := newAuthFixture()
	handler := RequireAuth(fixture.svc, discardLogger())(okHandler())

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantErrCode   string
	}{
		{name: "no header", authorization: "", wantStatus: http.StatusUnauthorized, wantErrCode: "missing_credential"},
		{name: "wrong scheme", authorization: "Basic Zm9v", wantStatus: http.StatusUnauthorized, wantErrCode: "malformed_credential"},
		{name: "bare token", authorization: "good-token", wantStatus: http.StatusUnauthorized, wantErrCode: "malformed_credential"},
		{name: "rejected token", authorization: "Bearer bad-token", wantStatus: http.StatusUnauthorized, wantErrCode: "invalid_credential"},
		{name: "valid token", authorization: "Bearer good-token", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, tt.authorization)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErrCode != "" {
				assert.Equal(t, tt.wantErrCode, errCode(t, rec))
			}
		})
	}
}

func TestRequireAuth_ProviderUnavailableIs500(t *testing.T) {
	fixture := newAuthFixture()
	fixture.verifier.VerifyFunc = func(context.Context, string) (domainauth.Identity, error) {
		return domainauth.Identity{}, apperrors.Unavailable("identity provider unreachable")
	}
	handler := RequireAuth(fixture.svc, discardLogger())(okHandler())

	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "provider_unavailable", errCode(t, rec))
}

func TestRequireAuth_ProfileLookupFailureIs500(t *testing.T) {
	fixture := newAuthFixture()
	fixture.store.GetErr = errors.New("connection refused")
	handler := RequireAuth(fixture.svc, discardLogger())(okHandler())

	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "profile_error", errCode(t, rec))
}

func TestRequireAuth_AttachesIdentityAndProfile(t *testing.T) {
	fixture := newAuthFixture()

	var gotIdentity domainauth.Identity
	var gotProfile domainauth.AccessProfile
	handler := RequireAuth(fixture.svc, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := GetIdentityFromContext(r.Context())
		require.True(t, ok)
		profile, ok := GetProfileFromContext(r.Context())
		require.True(t, ok)
		gotIdentity = ident
		gotProfile = profile
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", gotIdentity.ID)
	assert.Equal(t, "u1", gotProfile.ID)
	assert.Equal(t, "u1", gotProfile.Name)
	assert.Equal(t, domainauth.RoleFieldSales, gotProfile.Role)
}

func TestRequireRole_DeniedForWrongRole(t *testing.T) {
	fixture := newAuthFixture()
	handler := RequireRole(fixture.svc, discardLogger(), domainauth.RoleAdmin)(okHandler())

	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient_role", errCode(t, rec))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "admin")
	assert.NotContains(t, body["message"], "field_sales")
}

func TestRequireRole_DisabledAccountBeatsRole(t *testing.T) {
	fixture := newAuthFixture()
	fixture.store.Put(domainauth.AccessProfile{ID: "u1", Role: domainauth.RoleAdmin, Name: "u1", Active: false})

	// Disabled wins even on a route the role would satisfy.
	handler := RequireRole(fixture.svc, discardLogger(), domainauth.RoleAdmin)(okHandler())
	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "account_disabled", errCode(t, rec))
}

func TestRequireRole_AdmitsListedRole(t *testing.T) {
	fixture := newAuthFixture()
	fixture.store.Put(domainauth.AccessProfile{ID: "u1", Role: domainauth.RoleWarehousePicking, Name: "u1", Active: true})

	handler := RequireRole(fixture.svc, discardLogger(), domainauth.RoleWarehousePicking, domainauth.RoleAdmin)(okHandler())
	rec := doRequest(t, handler, "Bearer good-token")

	assert.Equal(t, http.StatusOK, rec.Code)
}

// First request from an unseen identity provisions a default field_sales
// profile named after the account email, then gets denied on an admin route
// with a message naming admin.
func TestRequireRole_FirstUseProvisionThenDeny(t *testing.T) {
	fixture := newAuthFixture()
	handler := RequireRole(fixture.svc, discardLogger(), domainauth.RoleAdmin)(okHandler())

	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient_role", errCode(t, rec))

	provisioned, err := fixture.store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleFieldSales, provisioned.Role)
	assert.Equal(t, "u1", provisioned.Name)
	assert.True(t, provisioned.Active)
}

// 500 responses must not echo transport or store internals back to the
// caller; that detail belongs in the server log only.
func TestRequireAuth_ProviderFailureBodyOmitsCause(t *testing.T) {
	fixture := newAuthFixture()
	fixture.verifier.VerifyFunc = func(context.Context, string) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("dial tcp 10.0.0.5:443: connect: connection refused (idp.internal.example)")
	}
	handler := RequireAuth(fixture.svc, discardLogger())(okHandler())

	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "provider_unavailable", errCode(t, rec))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "verify credential", body["message"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.NotContains(t, rec.Body.String(), "idp.internal.example")
}

func TestRequireAuth_ProfileFailureBodyOmitsCause(t *testing.T) {
	fixture := newAuthFixture()
	fixture.store.GetErr = errors.New("dial tcp db.internal.example:5432: connect: connection refused")
	handler := RequireAuth(fixture.svc, discardLogger())(okHandler())

	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "profile_error", errCode(t, rec))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "profile lookup failed", body["message"])
	assert.NotContains(t, rec.Body.String(), "db.internal.example")
}

// Rejections from the provider also travel with a wrapped cause; only the
// typed message may reach the client.
func TestRequireAuth_InvalidCredentialBodyOmitsCause(t *testing.T) {
	fixture := newAuthFixture()
	fixture.verifier.VerifyFunc = func(context.Context, string) (domainauth.Identity, error) {
		cause := errors.New("oidc: signature verification failed: key id a1b2c3 unknown")
		return domainauth.Identity{}, apperrors.Wrap(cause, apperrors.ErrCodeUnauthenticated, "token rejected")
	}
	handler := RequireAuth(fixture.svc, discardLogger())(okHandler())

	rec := doRequest(t, handler, "Bearer good-token")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credential", errCode(t, rec))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "token rejected", body["message"])
	assert.NotContains(t, rec.Body.String(), "a1b2c3")
}

// Every pipeline failure lands in the log with the stage, the identity id
// when it is known, and the full upstream error.
func TestRequireAuth_LogsPipelineFailures(t *testing.T) {
	t.Run("verify stage without identity", func(t *testing.T) {
		fixture := newAuthFixture()
		fixture.verifier.VerifyFunc = func(context.Context, string) (domainauth.Identity, error) {
			return domainauth.Identity{}, errors.New("dial tcp 10.0.0.5:443: connect: connection refused")
		}

		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := RequireAuth(fixture.svc, logger)(okHandler())

		doRequest(t, handler, "Bearer good-token")

		logged := buf.String()
		assert.Contains(t, logged, `"stage":"verify"`)
		assert.Contains(t, logged, "10.0.0.5")
		assert.NotContains(t, logged, "identity_id")
	})

	t.Run("profile stage carries identity id", func(t *testing.T) {
		fixture := newAuthFixture()
		fixture.store.GetErr = errors.New("connection refused")

		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := RequireAuth(fixture.svc, logger)(okHandler())

		doRequest(t, handler, "Bearer good-token")

		logged := buf.String()
		assert.Contains(t, logged, `"stage":"profile"`)
		assert.Contains(t, logged, `"identity_id":"u1"`)
		assert.Contains(t, logged, "connection refused")
	})

	t.Run("authorize stage logs denial", func(t *testing.T) {
		fixture := newAuthFixture()

		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := RequireRole(fixture.svc, logger, domainauth.RoleAdmin)(okHandler())

		doRequest(t, handler, "Bearer good-token")

		logged := buf.String()
		assert.Contains(t, logged, `"stage":"authorize"`)
		assert.Contains(t, logged, `"identity_id":"u1"`)
		assert.Contains(t, logged, `"code":"insufficient_role"`)
	})
}
