package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	"github.com/fieldops/fieldops-api/internal/domain/model"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/testutil"
)

// orderFixture seeds the rows an order needs: a customer, two products and
// the profile that places the order.
type orderFixture struct {
	customer *model.Customer
	widget   *model.Product
	gadget   *model.Product
	placedBy string
}

func setupOrderFixture(t *testing.T, db *sql.DB) orderFixture {
	t.Helper()
	seedTestProfile(t, db, "sales-1", domainauth.RoleFieldSales)
	return orderFixture{
		customer: createTestCustomer(t, db, "Acme Hardware"),
		widget:   createTestProduct(t, db, "WIDGET-1", 1500),
		gadget:   createTestProduct(t, db, "GADGET-1", 250),
		placedBy: "sales-1",
	}
}

func TestOrderRepo_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewOrderRepo(db)
		fx := setupOrderFixture(t, db)

		created, err := repo.Create(ctx, CreateOrderParams{
			CustomerID: fx.customer.ID,
			PlacedBy:   fx.placedBy,
			Items: []model.OrderItem{
				{ProductID: fx.widget.ID, Quantity: 2, UnitPriceCents: fx.widget.PriceCents},
				{ProductID: fx.gadget.ID, Quantity: 1, UnitPriceCents: fx.gadget.PriceCents},
			},
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, model.OrderStatusPending, created.Status)
		assert.Equal(t, fx.placedBy, created.PlacedBy)
		require.Len(t, created.Items, 2)
		assert.Equal(t, created.ID, created.Items[0].OrderID)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		require.Len(t, got.Items, 2)
		assert.Equal(t, int64(3250), got.TotalCents())
	})
}

func TestOrderRepo_CreateRequiresItems(t *testing.T) {
	repo := NewOrderRepo(nil)

	_, err := repo.Create(context.Background(), CreateOrderParams{
		CustomerID: "00000000-0000-0000-0000-000000000000",
		PlacedBy:   "sales-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one line item")
}

func TestOrderRepo_CreateUnknownCustomerRollsBack(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewOrderRepo(db)
		fx := setupOrderFixture(t, db)

		_, err := repo.Create(ctx, CreateOrderParams{
			CustomerID: "00000000-0000-0000-0000-000000000000",
			PlacedBy:   fx.placedBy,
			Items: []model.OrderItem{
				{ProductID: fx.widget.ID, Quantity: 1, UnitPriceCents: fx.widget.PriceCents},
			},
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		// The transaction left no partial rows behind.
		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM order_items").Scan(&count))
		assert.Zero(t, count)
	})
}

func TestOrderRepo_ListFilters(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewOrderRepo(db)
		fx := setupOrderFixture(t, db)
		other := createTestCustomer(t, db, "Bolt Supply")

		items := []model.OrderItem{{ProductID: fx.widget.ID, Quantity: 1, UnitPriceCents: 1500}}
		first, err := repo.Create(ctx, CreateOrderParams{CustomerID: fx.customer.ID, PlacedBy: fx.placedBy, Items: items})
		require.NoError(t, err)
		_, err = repo.Create(ctx, CreateOrderParams{CustomerID: other.ID, PlacedBy: fx.placedBy, Items: items})
		require.NoError(t, err)

		_, err = repo.UpdateStatus(ctx, first.ID, model.OrderStatusPending, model.OrderStatusPicking)
		require.NoError(t, err)

		all, err := repo.List(ctx, ListOrdersOptions{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		byCustomer, err := repo.List(ctx, ListOrdersOptions{CustomerID: fx.customer.ID})
		require.NoError(t, err)
		require.Len(t, byCustomer, 1)
		assert.Equal(t, first.ID, byCustomer[0].ID)

		byStatus, err := repo.List(ctx, ListOrdersOptions{Status: model.OrderStatusPicking})
		require.NoError(t, err)
		require.Len(t, byStatus, 1)
		assert.Equal(t, first.ID, byStatus[0].ID)

		both, err := repo.List(ctx, ListOrdersOptions{
			CustomerID: fx.customer.ID,
			Status:     model.OrderStatusShipped,
		})
		require.NoError(t, err)
		assert.Empty(t, both)
	})
}

func TestOrderRepo_UpdateStatus(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewOrderRepo(db)
		fx := setupOrderFixture(t, db)

		created, err := repo.Create(ctx, CreateOrderParams{
			CustomerID: fx.customer.ID,
			PlacedBy:   fx.placedBy,
			Items:      []model.OrderItem{{ProductID: fx.widget.ID, Quantity: 1, UnitPriceCents: 1500}},
		})
		require.NoError(t, err)

		updated, err := repo.UpdateStatus(ctx, created.ID, model.OrderStatusPending, model.OrderStatusPicking)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPicking, updated.Status)

		_, err = repo.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000000", model.OrderStatusPending, model.OrderStatusPicking)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

// The write lands only when the row still holds the expected status, so a
// transition losing a race reports a conflict instead of clobbering the
// winner's write.
func TestOrderRepo_UpdateStatusStaleReadConflicts(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewOrderRepo(db)
		fx := setupOrderFixture(t, db)

		created, err := repo.Create(ctx, CreateOrderParams{
			CustomerID: fx.customer.ID,
			PlacedBy:   fx.placedBy,
			Items:      []model.OrderItem{{ProductID: fx.widget.ID, Quantity: 1, UnitPriceCents: 1500}},
		})
		require.NoError(t, err)

		// A concurrent writer cancels the order after this caller read pending.
		_, err = repo.UpdateStatus(ctx, created.ID, model.OrderStatusPending, model.OrderStatusCanceled)
		require.NoError(t, err)

		_, err = repo.UpdateStatus(ctx, created.ID, model.OrderStatusPending, model.OrderStatusPicking)
		assert.ErrorIs(t, err, ErrOrderStatusConflict)

		kept, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCanceled, kept.Status)
	})
}

func TestOrderRepo_GetMissing(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewOrderRepo(db)

		_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
