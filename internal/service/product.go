package service

import (
	"context"

	"github.com/fieldops/fieldops-api/internal/data"
	"github.com/fieldops/fieldops-api/internal/domain/model"
)

// ProductService encapsulates business operations on the product catalog.
type ProductService struct {
	repo *data.ProductRepo
}

// NewProductService constructs a new ProductService.
func NewProductService(repo *data.ProductRepo) *ProductService {
	return &ProductService{repo: repo}
}

// Create creates a new product.
func (s *ProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	return s.repo.Create(ctx, req)
}

// Get retrieves a product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// List lists products.
func (s *ProductService) List(ctx context.Context, limit, offset int) ([]*model.Product, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies a partial update to a product.
func (s *ProductService) Update(ctx context.Context, id string, req model.UpdateProductRequest) (*model.Product, error) {
	return s.repo.Update(ctx, id, req)
}

// Delete removes a product. Missing rows surface as data.ErrProductNotFound.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return data.ErrProductNotFound
	}
	return nil
}
