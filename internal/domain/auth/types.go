package auth

// Package auth contains domain-level types for identity verification and
// role-based authorization. It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
)

// Role represents an operator class with a fixed set of permitted operations.
// The string values are persisted and externally visible; renaming one
// requires a data migration.
type Role string

const (
	RoleFieldSales       Role = "field_sales"
	RoleWarehousePicking Role = "warehouse_picking"
	RoleAdmin            Role = "admin"
)

// DefaultRole is assigned to identities seen for the first time. It is the
// least-privileged role so an unresolved identity never gains elevated
// access by default.
const DefaultRole = RoleFieldSales

// Roles returns all valid roles in a stable order.
func Roles() []Role {
	return []Role{RoleFieldSales, RoleWarehousePicking, RoleAdmin}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFieldSales, RoleWarehousePicking, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a persisted or user-supplied string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}

// Identity is the provider-verified caller. It is produced only by credential
// verification, is immutable for the lifetime of a request, and is never
// persisted by this service.
type Identity struct {
	// ID is the stable identifier assigned by the identity provider.
	ID string
	// Token is the bearer credential the caller presented. It is carried so
	// adapters can perform follow-up provider calls (e.g. UserInfo) on the
	// caller's behalf.
	Token string
}

// AccessProfile is this system's authorization record for an Identity.
// Exactly one profile exists per identity id; ID is the join key and is never
// mutated after creation. Deactivation is modeled as Active=false, never
// physical removal.
type AccessProfile struct {
	ID        string  `json:"id"`
	Role      Role    `json:"role"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Active    bool    `json:"active"`
}

// PlaceholderName is used for the display name when the provider's account
// email is unavailable during first-time provisioning.
const PlaceholderName = "operator"

// DeriveDisplayName returns the local-part of an account email, or
// PlaceholderName when the email is empty or has no local-part.
func DeriveDisplayName(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return PlaceholderName
	}
	return local
}

// NewDefaultProfile builds the profile provisioned on an identity's first
// request: least-privileged role, active, display name derived from email.
func NewDefaultProfile(identityID, email string) AccessProfile {
	return AccessProfile{
		ID:     identityID,
		Role:   DefaultRole,
		Name:   DeriveDisplayName(email),
		Active: true,
	}
}
