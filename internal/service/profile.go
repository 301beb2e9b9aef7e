package service

import (
	"context"
	"strings"

	"github.com/fieldops/fieldops-api/internal/data"
	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

const (
	defaultProfilePageSize = 50
	maxProfilePageSize     = 200
)

// ProfileService exposes administrative operations over access profiles.
// Provisioning of missing profiles happens in AuthService, not here.
type ProfileService struct {
	repo *data.ProfileRepo
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(repo *data.ProfileRepo) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get retrieves a single profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (domainauth.AccessProfile, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of profiles ordered by id.
func (s *ProfileService) List(ctx context.Context, limit, offset int) ([]domainauth.AccessProfile, error) {
	if limit <= 0 {
		limit = defaultProfilePageSize
	}
	if limit > maxProfilePageSize {
		limit = maxProfilePageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// UpdateProfileInput carries the json body of an admin profile update.
type UpdateProfileInput struct {
	Role      *string `json:"role"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Active    *bool   `json:"active"`
}

// Update applies an administrative change to a profile. Role values are
// validated against the defined role set before touching the store.
func (s *ProfileService) Update(ctx context.Context, id string, in UpdateProfileInput) (domainauth.AccessProfile, error) {
	req := data.UpdateProfileRequest{
		Name:      in.Name,
		AvatarURL: in.AvatarURL,
		Active:    in.Active,
	}
	if in.Role != nil {
		role, err := domainauth.ParseRole(*in.Role)
		if err != nil {
			return domainauth.AccessProfile{}, apperrors.ValidationField("role", err.Error())
		}
		req.Role = &role
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return domainauth.AccessProfile{}, apperrors.ValidationField("name", "name cannot be empty")
	}
	if !req.HasUpdates() {
		return domainauth.AccessProfile{}, apperrors.Validation("no fields to update")
	}
	return s.repo.Update(ctx, id, req)
}
