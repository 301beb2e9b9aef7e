package httpx

import (
	"errors"
	"net/http"

	"github.com/fieldops/fieldops-api/internal/data"
	"github.com/fieldops/fieldops-api/internal/domain/model"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/service"
)

// OrderHandlers provides HTTP handlers for order placement and fulfillment.
type OrderHandlers struct {
	Svc *service.OrderService
}

// Create handles POST /api/orders. The order is attributed to the
// authenticated caller's profile.
func (h *OrderHandlers) Create(w http.ResponseWriter, r *http.Request) {
	profile, ok := GetProfileFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "profile_error",
			Err:     errors.New("request context is missing authentication state"),
		})
		return
	}

	var req *model.CreateOrderRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	order, err := h.Svc.Create(r.Context(), profile.ID, req)
	if err != nil {
		writeOrderError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders. Supports customer_id, status, limit and
// offset parameters.
func (h *OrderHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, defaultListLimit, maxListLimit)
	opts := data.ListOrdersOptions{
		CustomerID: r.URL.Query().Get("customer_id"),
		Status:     model.OrderStatus(r.URL.Query().Get("status")),
		Limit:      limit,
		Offset:     offset,
	}
	if opts.Status != "" && !opts.Status.Valid() {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("unknown status filter"),
		})
		return
	}

	orders, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		writeOrderError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeOrderError(w, err, "get_failed")
		return
	}

	WriteJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/orders/{id}/status.
func (h *OrderHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateOrderStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	order, err := h.Svc.UpdateStatus(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeOrderError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, order)
}

func writeOrderError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, data.ErrOrderNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "order_not_found", Err: err})
	case errors.Is(err, data.ErrOrderStatusConflict):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "order_status_conflict", Err: err})
	case errors.Is(err, data.ErrCustomerNotFound):
		WriteError(w, ErrorParams{Code: http.StatusUnprocessableEntity, ErrCode: "unknown_customer", Err: err})
	case errors.Is(err, data.ErrProductNotFound):
		WriteError(w, ErrorParams{Code: http.StatusUnprocessableEntity, ErrCode: "unknown_product", Err: err})
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: fallback, Err: err})
	}
}
