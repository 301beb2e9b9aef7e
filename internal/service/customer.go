package service

import (
	"context"

	"github.com/fieldops/fieldops-api/internal/data"
	"github.com/fieldops/fieldops-api/internal/domain/model"
)

// CustomerService encapsulates business operations on customers. The record
// logic is a thin pass-through to the repository; access control happens in
// the HTTP pipeline before any of these methods run.
type CustomerService struct {
	repo *data.CustomerRepo
}

// NewCustomerService constructs a new CustomerService.
func NewCustomerService(repo *data.CustomerRepo) *CustomerService {
	return &CustomerService{repo: repo}
}

// Create creates a new customer.
func (s *CustomerService) Create(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	return s.repo.Create(ctx, req)
}

// Get retrieves a customer by id.
func (s *CustomerService) Get(ctx context.Context, id string) (*model.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// List lists customers, optionally filtered by a name substring.
func (s *CustomerService) List(ctx context.Context, q string, limit, offset int) ([]*model.Customer, error) {
	return s.repo.List(ctx, q, limit, offset)
}

// Update applies a partial update to a customer.
func (s *CustomerService) Update(ctx context.Context, id string, req model.UpdateCustomerRequest) (*model.Customer, error) {
	return s.repo.Update(ctx, id, req)
}

// Delete removes a customer. Missing rows surface as data.ErrCustomerNotFound.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return data.ErrCustomerNotFound
	}
	return nil
}
