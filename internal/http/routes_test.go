package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
)

func newTestRouter(fixture *authFixture) http.Handler {
	return NewRouter(RouterServices{Auth: fixture.svc})
}

func routerRequest(handler http.Handler, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthzIsOpen(t *testing.T) {
	router := newTestRouter(newAuthFixture())

	rec := routerRequest(router, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_APIRoutesRequireCredentials(t *testing.T) {
	router := newTestRouter(newAuthFixture())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/customers"},
		{http.MethodGet, "/api/products"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/profiles"},
		{http.MethodGet, "/api/me"},
	}
	for _, p := range paths {
		rec := routerRequest(router, p.method, p.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestRouter_RolePolicyPerRouteGroup(t *testing.T) {
	tests := []struct {
		name       string
		role       domainauth.Role
		method     string
		path       string
		wantStatus int
	}{
		{name: "warehouse cannot read customers", role: domainauth.RoleWarehousePicking,
			method: http.MethodGet, path: "/api/customers", wantStatus: http.StatusForbidden},
		{name: "field sales cannot write products", role: domainauth.RoleFieldSales,
			method: http.MethodPost, path: "/api/products", wantStatus: http.StatusForbidden},
		{name: "field sales cannot transition orders", role: domainauth.RoleFieldSales,
			method: http.MethodPut, path: "/api/orders/o1/status", wantStatus: http.StatusForbidden},
		{name: "warehouse cannot place orders", role: domainauth.RoleWarehousePicking,
			method: http.MethodPost, path: "/api/orders", wantStatus: http.StatusForbidden},
		{name: "field sales cannot administer profiles", role: domainauth.RoleFieldSales,
			method: http.MethodGet, path: "/api/profiles", wantStatus: http.StatusForbidden},
		{name: "warehouse cannot administer profiles", role: domainauth.RoleWarehousePicking,
			method: http.MethodPut, path: "/api/profiles/u2", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newAuthFixture()
			fixture.store.Put(domainauth.AccessProfile{ID: "u1", Role: tt.role, Name: "u1", Active: true})
			router := newTestRouter(fixture)

			rec := routerRequest(router, tt.method, tt.path, "Bearer good-token")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_MeReturnsCallerProfile(t *testing.T) {
	fixture := newAuthFixture()
	fixture.store.Put(domainauth.AccessProfile{ID: "u1", Role: domainauth.RoleAdmin, Name: "jane", Active: true})
	router := newTestRouter(fixture)

	rec := routerRequest(router, http.MethodGet, "/api/me", "Bearer good-token")

	require.Equal(t, http.StatusOK, rec.Code)
	var body MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.Identity)
	assert.Equal(t, domainauth.RoleAdmin, body.Profile.Role)
	assert.Equal(t, "jane", body.Profile.Name)
}

func TestRouter_DisabledProfileIsForbiddenEverywhere(t *testing.T) {
	fixture := newAuthFixture()
	fixture.store.Put(domainauth.AccessProfile{ID: "u1", Role: domainauth.RoleAdmin, Name: "u1", Active: false})
	router := newTestRouter(fixture)

	for _, path := range []string{"/api/customers", "/api/profiles", "/api/me"} {
		rec := routerRequest(router, http.MethodGet, path, "Bearer good-token")
		require.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "account_disabled", errCode(t, rec), path)
	}
}
