package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusPicking, true},
		{OrderStatusPending, OrderStatusCanceled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPicking, OrderStatusShipped, true},
		{OrderStatusPicking, OrderStatusCanceled, true},
		{OrderStatusPicking, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusCanceled, false},
		{OrderStatusShipped, OrderStatusPicking, false},
		{OrderStatusCanceled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOrder_TotalCents(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{Quantity: 2, UnitPriceCents: 1500},
		{Quantity: 1, UnitPriceCents: 250},
	}}
	assert.Equal(t, int64(3250), order.TotalCents())

	empty := &Order{}
	assert.Zero(t, empty.TotalCents())
}

func TestCreateOrderRequest_Validate(t *testing.T) {
	valid := &CreateOrderRequest{
		CustomerID: "c1",
		Items:      []CreateOrderItemRequest{{ProductID: "p1", Quantity: 2}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name      string
		req       *CreateOrderRequest
		wantField string
	}{
		{
			name:      "missing customer",
			req:       &CreateOrderRequest{Items: []CreateOrderItemRequest{{ProductID: "p1", Quantity: 1}}},
			wantField: "customer_id",
		},
		{
			name:      "no items",
			req:       &CreateOrderRequest{CustomerID: "c1"},
			wantField: "items",
		},
		{
			name: "item without product",
			req: &CreateOrderRequest{
				CustomerID: "c1",
				Items:      []CreateOrderItemRequest{{Quantity: 1}},
			},
			wantField: "items",
		},
		{
			name: "zero quantity",
			req: &CreateOrderRequest{
				CustomerID: "c1",
				Items:      []CreateOrderItemRequest{{ProductID: "p1", Quantity: 0}},
			},
			wantField: "items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.wantField, apperrors.GetField(err))
		})
	}
}

func TestUpdateOrderStatusRequest_Validate(t *testing.T) {
	require.NoError(t, (&UpdateOrderStatusRequest{Status: OrderStatusPicking}).Validate())

	err := (&UpdateOrderStatusRequest{Status: "unknown"}).Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
