// Package httpx provides the HTTP handlers and middleware for the fieldops API.
package httpx

import (
	"errors"
	"net/http"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
)

// MeResponse describes the authenticated caller for GET /api/me.
type MeResponse struct {
	Identity string                   `json:"identity"`
	Profile  domainauth.AccessProfile `json:"profile"`
}

// MeHandler returns the caller's own identity and access profile. It must be
// mounted behind RequireAuth so the context carries both.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	ident, identOK := GetIdentityFromContext(r.Context())
	profile, profileOK := GetProfileFromContext(r.Context())
	if !identOK || !profileOK {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "profile_error",
			Err:     errors.New("request context is missing authentication state"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, MeResponse{Identity: ident.ID, Profile: profile})
}
