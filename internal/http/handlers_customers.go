package httpx

import (
	"errors"
	"net/http"

	"github.com/fieldops/fieldops-api/internal/data"
	"github.com/fieldops/fieldops-api/internal/domain/model"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// CustomerHandlers provides HTTP handlers for customer CRUD.
type CustomerHandlers struct {
	Svc *service.CustomerService
}

// Create handles POST /api/customers.
func (h *CustomerHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateCustomerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		writeCustomerError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, customer)
}

// List handles GET /api/customers. Supports q, limit and offset parameters.
func (h *CustomerHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, defaultListLimit, maxListLimit)
	customers, err := h.Svc.List(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeCustomerError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, customers)
}

// GetByID handles GET /api/customers/{id}.
func (h *CustomerHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	customer, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeCustomerError(w, err, "get_failed")
		return
	}

	WriteJSON(w, http.StatusOK, customer)
}

// Update handles PUT /api/customers/{id}.
func (h *CustomerHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCustomerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeCustomerError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/{id}.
func (h *CustomerHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeCustomerError(w, err, "delete_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeCustomerError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, data.ErrCustomerNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "customer_not_found", Err: err})
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: fallback, Err: err})
	}
}
