package httpx

import (
	"errors"
	"net/http"

	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/ports"
	"github.com/fieldops/fieldops-api/internal/service"
)

// ProfileHandlers provides the admin-only HTTP handlers for access profiles.
type ProfileHandlers struct {
	Svc *service.ProfileService
}

// List handles GET /api/profiles.
func (h *ProfileHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, defaultListLimit, maxListLimit)
	profiles, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		writeProfileError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, profiles)
}

// GetByID handles GET /api/profiles/{id}.
func (h *ProfileHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeProfileError(w, err, "get_failed")
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/profiles/{id}. Role, name, avatar and active flag
// can be changed; the profile id is fixed at provisioning time.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileInput
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeProfileError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

func writeProfileError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ports.ErrProfileNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "profile_not_found", Err: err})
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: fallback, Err: err})
	}
}
