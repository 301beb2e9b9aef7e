package httpx

import (
	"errors"
	"net/http"

	"github.com/fieldops/fieldops-api/internal/data"
	"github.com/fieldops/fieldops-api/internal/domain/model"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/service"
)

// ProductHandlers provides HTTP handlers for the product catalog.
type ProductHandlers struct {
	Svc *service.ProductService
}

// Create handles POST /api/products.
func (h *ProductHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateProductRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		writeProductError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, product)
}

// List handles GET /api/products.
func (h *ProductHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, defaultListLimit, maxListLimit)
	products, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		writeProductError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeProductError(w, err, "get_failed")
		return
	}

	WriteJSON(w, http.StatusOK, product)
}

// Update handles PUT /api/products/{id}.
func (h *ProductHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProductRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeProductError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeProductError(w, err, "delete_failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeProductError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, data.ErrProductNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "product_not_found", Err: err})
	case errors.Is(err, data.ErrProductSKUExists):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "sku_conflict", Err: err})
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: fallback, Err: err})
	}
}
