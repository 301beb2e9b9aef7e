package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/fieldops-api/internal/domain/model"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/testutil"
)

func createTestProduct(t *testing.T, db *sql.DB, sku string, priceCents int64) *model.Product {
	t.Helper()
	repo := NewProductRepo(db)
	p, err := repo.Create(context.Background(), &model.CreateProductRequest{
		SKU:        sku,
		Name:       "product " + sku,
		PriceCents: priceCents,
		Stock:      10,
	})
	require.NoError(t, err)
	return p
}

func TestProductRepo_Create_Get_List_Update_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewProductRepo(db)

		created, err := repo.Create(ctx, &model.CreateProductRequest{
			SKU:         " WIDGET-1 ",
			Name:        " Widget ",
			Description: "a widget",
			PriceCents:  1500,
			Stock:       25,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, "WIDGET-1", created.SKU)
		assert.Equal(t, "Widget", created.Name)
		assert.Equal(t, int64(1500), created.PriceCents)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byID.ID)

		bySKU, err := repo.GetBySKU(ctx, "WIDGET-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, bySKU.ID)

		list, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)

		updated, err := repo.Update(ctx, created.ID, model.UpdateProductRequest{
			PriceCents: func() *int64 { v := int64(1750); return &v }(),
			Stock:      func() *int { v := 30; return &v }(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1750), updated.PriceCents)
		assert.Equal(t, 30, updated.Stock)
		assert.Equal(t, "WIDGET-1", updated.SKU)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestProductRepo_CreateDuplicateSKU(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewProductRepo(db)

		createTestProduct(t, db, "WIDGET-1", 1500)

		_, err := repo.Create(ctx, &model.CreateProductRequest{
			SKU:        "WIDGET-1",
			Name:       "another widget",
			PriceCents: 900,
		})
		assert.ErrorIs(t, err, ErrProductSKUExists)
	})
}

func TestProductRepo_CreateValidation(t *testing.T) {
	repo := NewProductRepo(nil)
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.CreateProductRequest{Name: "no sku", PriceCents: 100})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "sku", apperrors.GetField(err))

	_, err = repo.Create(ctx, &model.CreateProductRequest{SKU: "X", Name: "neg", PriceCents: -1})
	require.Error(t, err)
	assert.Equal(t, "price_cents", apperrors.GetField(err))
}

func TestProductRepo_GetBySKUMissing(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewProductRepo(db)

		_, err := repo.GetBySKU(context.Background(), "NOPE")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}
