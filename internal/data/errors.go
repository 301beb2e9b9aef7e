package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Customer repository sentinels.
	ErrCustomerNotFound = errors.New("customer not found")

	// Product repository sentinels.
	ErrProductNotFound  = errors.New("product not found")
	ErrProductSKUExists = errors.New("product sku already exists")

	// Order repository sentinels.
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderStatusConflict = errors.New("order status changed concurrently")
)
