package model

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

// Product represents a sellable item in the catalog.
type Product struct {
	ID          string    `json:"id"          db:"id"`
	SKU         string    `json:"sku"         db:"sku"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	// PriceCents is the unit price in the smallest currency unit.
	PriceCents int64     `json:"price_cents" db:"price_cents"`
	Stock      int       `json:"stock"       db:"stock"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"  db:"updated_at"`
}

// CreateProductRequest represents a request to create a new product.
type CreateProductRequest struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock,omitempty"`
}

// UpdateProductRequest represents a partial update to an existing product.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
}

// Validate validates the CreateProductRequest fields.
func (r *CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.SKU) == "" {
		return apperrors.ValidationField("sku", "sku is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.ValidationField("name", "name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxNameLen {
		return apperrors.ValidationField("name", "name cannot exceed 255 characters")
	}
	if r.PriceCents < 0 {
		return apperrors.ValidationField("price_cents", "price cannot be negative")
	}
	if r.Stock < 0 {
		return apperrors.ValidationField("stock", "stock cannot be negative")
	}
	return nil
}

// HasUpdates reports whether the update request changes at least one field.
func (r *UpdateProductRequest) HasUpdates() bool {
	return r.Name != nil || r.Description != nil || r.PriceCents != nil || r.Stock != nil
}

// Validate validates the UpdateProductRequest fields.
func (r *UpdateProductRequest) Validate() error {
	if !r.HasUpdates() {
		return apperrors.Validation("at least one field must be updated")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return apperrors.ValidationField("name", "name cannot be empty")
	}
	if r.PriceCents != nil && *r.PriceCents < 0 {
		return apperrors.ValidationField("price_cents", "price cannot be negative")
	}
	if r.Stock != nil && *r.Stock < 0 {
		return apperrors.ValidationField("stock", "stock cannot be negative")
	}
	return nil
}
