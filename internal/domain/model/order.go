package model

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

// OrderStatus tracks an order through the fulfillment flow.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPicking  OrderStatus = "picking"
	OrderStatusShipped  OrderStatus = "shipped"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Valid reports whether s is one of the defined order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPicking, OrderStatusShipped, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status may move to next. Pending
// orders can start picking or be canceled, picking orders can ship or be
// canceled. Shipped and canceled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPicking || next == OrderStatusCanceled
	case OrderStatusPicking:
		return next == OrderStatusShipped || next == OrderStatusCanceled
	default:
		return false
	}
}

// Order represents a customer order with its line items.
type Order struct {
	ID         string      `json:"id"          db:"id"`
	CustomerID string      `json:"customer_id" db:"customer_id"`
	Status     OrderStatus `json:"status"      db:"status"`
	// PlacedBy is the access-profile id of the operator who created the order.
	PlacedBy  string      `json:"placed_by"  db:"placed_by"`
	Items     []OrderItem `json:"items"      db:"-"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// TotalCents returns the sum of the line item subtotals.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.UnitPriceCents * int64(it.Quantity)
	}
	return total
}

// OrderItem is a single product line on an order. UnitPriceCents snapshots the
// product price at order time.
type OrderItem struct {
	OrderID        string `json:"order_id"         db:"order_id"`
	ProductID      string `json:"product_id"       db:"product_id"`
	Quantity       int    `json:"quantity"         db:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents" db:"unit_price_cents"`
}

// CreateOrderRequest represents a request to place a new order.
type CreateOrderRequest struct {
	CustomerID string                   `json:"customer_id"`
	Items      []CreateOrderItemRequest `json:"items"`
}

// CreateOrderItemRequest is a single requested line item.
type CreateOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateOrderStatusRequest requests a status transition on an order.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// Validate validates the CreateOrderRequest fields.
func (r *CreateOrderRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return apperrors.ValidationField("customer_id", "customer_id is required")
	}
	if len(r.Items) == 0 {
		return apperrors.ValidationField("items", "at least one line item is required")
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return apperrors.ValidationField("items", fmt.Sprintf("items[%d].product_id is required", i))
		}
		if it.Quantity <= 0 {
			return apperrors.ValidationField("items", fmt.Sprintf("items[%d].quantity must be positive", i))
		}
	}
	return nil
}

// Validate validates the UpdateOrderStatusRequest fields.
func (r *UpdateOrderStatusRequest) Validate() error {
	if !r.Status.Valid() {
		return apperrors.ValidationField("status", fmt.Sprintf("invalid status: %q", r.Status))
	}
	return nil
}
