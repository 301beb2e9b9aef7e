// Package model defines the business record types shared by the fieldops API.
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

const (
	// maxNameLen is the maximum allowed length for record names in characters.
	maxNameLen = 255
	// maxNoteLen is the maximum allowed length for free-text notes.
	maxNoteLen = 2000
)

// Customer represents a customer account managed by field sales.
type Customer struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Email     string    `json:"email"      db:"email"`
	Phone     string    `json:"phone"      db:"phone"`
	Address   string    `json:"address"    db:"address"`
	Note      string    `json:"note"       db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateCustomerRequest represents a request to create a new customer.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Note    string `json:"note,omitempty"`
}

// UpdateCustomerRequest represents a partial update to an existing customer.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Note    *string `json:"note,omitempty"`
}

// Validate validates the CreateCustomerRequest fields.
func (r *CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.ValidationField("name", "name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxNameLen {
		return apperrors.ValidationField("name", "name cannot exceed 255 characters")
	}
	if utf8.RuneCountInString(r.Note) > maxNoteLen {
		return apperrors.ValidationField("note", "note cannot exceed 2000 characters")
	}
	return nil
}

// HasUpdates reports whether the update request changes at least one field.
func (r *UpdateCustomerRequest) HasUpdates() bool {
	return r.Name != nil || r.Email != nil || r.Phone != nil || r.Address != nil || r.Note != nil
}

// Validate validates the UpdateCustomerRequest fields.
func (r *UpdateCustomerRequest) Validate() error {
	if !r.HasUpdates() {
		return apperrors.Validation("at least one field must be updated")
	}
	if r.Name != nil {
		if strings.TrimSpace(*r.Name) == "" {
			return apperrors.ValidationField("name", "name cannot be empty")
		}
		if utf8.RuneCountInString(*r.Name) > maxNameLen {
			return apperrors.ValidationField("name", "name cannot exceed 255 characters")
		}
	}
	if r.Note != nil && utf8.RuneCountInString(*r.Note) > maxNoteLen {
		return apperrors.ValidationField("note", "note cannot exceed 2000 characters")
	}
	return nil
}
