package service

import (
	"context"
	"fmt"

	"github.com/fieldops/fieldops-api/internal/data"
	"github.com/fieldops/fieldops-api/internal/domain/model"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

// OrderServiceOptions groups dependencies for OrderService.
type OrderServiceOptions struct {
	Orders    *data.OrderRepo
	Customers *data.CustomerRepo
	Products  *data.ProductRepo
}

// OrderService encapsulates order placement and fulfillment transitions.
type OrderService struct {
	orders    *data.OrderRepo
	customers *data.CustomerRepo
	products  *data.ProductRepo
}

// NewOrderService constructs a new OrderService.
func NewOrderService(opts OrderServiceOptions) *OrderService {
	return &OrderService{
		orders:    opts.Orders,
		customers: opts.Customers,
		products:  opts.Products,
	}
}

// Create places an order for a customer, snapshotting the current unit price
// of each line item. placedBy is the access-profile id of the operator.
func (s *OrderService) Create(ctx context.Context, placedBy string, req *model.CreateOrderRequest) (*model.Order, error) {
	if req == nil {
		return nil, apperrors.Validation("create order request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		product, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, model.OrderItem{
			ProductID:      product.ID,
			Quantity:       it.Quantity,
			UnitPriceCents: product.PriceCents,
		})
	}

	return s.orders.Create(ctx, data.CreateOrderParams{
		CustomerID: req.CustomerID,
		PlacedBy:   placedBy,
		Items:      items,
	})
}

// Get retrieves an order with its line items.
func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List lists orders matching the options.
func (s *OrderService) List(ctx context.Context, opts data.ListOrdersOptions) ([]*model.Order, error) {
	return s.orders.List(ctx, opts)
}

// UpdateStatus moves an order along the fulfillment flow, enforcing the
// allowed transitions.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req model.UpdateOrderStatusRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.Validation(
			fmt.Sprintf("cannot move order from %q to %q", current.Status, req.Status))
	}

	return s.orders.UpdateStatus(ctx, id, current.Status, req.Status)
}
