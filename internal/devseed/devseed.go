// Package devseed populates a development database with demo data so the API
// is usable immediately after startup. It is only invoked in dev mode.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fieldops/fieldops-api/internal/data"
	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	"github.com/fieldops/fieldops-api/internal/domain/model"
	"github.com/fieldops/fieldops-api/internal/ports"
	"github.com/fieldops/fieldops-api/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	DB        *sql.DB
	profiles  *data.ProfileRepo
	customers *service.CustomerService
	products  *service.ProductService
	orders    *service.OrderService
}

// NewServices constructs all required services for seeding using the provided DB.
func NewServices(db *sql.DB) Services {
	profileRepo := data.NewProfileRepo(db)
	customerRepo := data.NewCustomerRepo(db)
	productRepo := data.NewProductRepo(db)
	orderRepo := data.NewOrderRepo(db)

	return Services{
		DB:        db,
		profiles:  profileRepo,
		customers: service.NewCustomerService(customerRepo),
		products:  service.NewProductService(productRepo),
		orders: service.NewOrderService(service.OrderServiceOptions{
			Orders:    orderRepo,
			Customers: customerRepo,
			Products:  productRepo,
		}),
	}
}

// Run executes the full development seeding workflow against the provided DB.
// Seeding is idempotent; existing rows are left untouched.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	failures := 0
	failures += seedProfiles(ctx, svcs.profiles, logger)
	failures += seedProducts(ctx, svcs.products, logger)
	failures += seedCustomers(ctx, svcs.customers, logger)

	if err := seedDemoOrder(ctx, svcs, logger); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to seed demo order", "error", err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

// devSeedIdentity is the profile id the demo order is placed under. It matches
// the default identity of the static auth provider so dev requests resolve to
// a pre-provisioned admin profile instead of a default field_sales one.
const devSeedIdentity = "dev-user"

func defaultProfiles() []domainauth.AccessProfile {
	return []domainauth.AccessProfile{
		{ID: devSeedIdentity, Role: domainauth.RoleAdmin, Name: "dev", Active: true},
		{ID: "demo-sales", Role: domainauth.RoleFieldSales, Name: "demo.sales", Active: true},
		{ID: "demo-picker", Role: domainauth.RoleWarehousePicking, Name: "demo.picker", Active: true},
	}
}

func seedProfiles(ctx context.Context, repo *data.ProfileRepo, logger *slog.Logger) int {
	failures := 0
	for _, profile := range defaultProfiles() {
		created := true
		err := repo.InsertIfAbsent(ctx, profile)
		if errors.Is(err, ports.ErrProfileExists) {
			created = false
			err = nil
		}
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create profile", "id", profile.ID, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "profile already exists"
			if created {
				msg = "created profile"
			}
			logger.InfoContext(ctx, msg, "id", profile.ID, "role", string(profile.Role))
		}
	}
	return failures
}

func defaultProducts() []*model.CreateProductRequest {
	return []*model.CreateProductRequest{
		{SKU: "WRENCH-10", Name: "Adjustable Wrench 10in", PriceCents: 1899, Stock: 120},
		{SKU: "DRILL-18V", Name: "Cordless Drill 18V", Description: "battery included", PriceCents: 12900, Stock: 35},
		{SKU: "TAPE-25FT", Name: "Tape Measure 25ft", PriceCents: 1250, Stock: 200},
		{SKU: "GLOVES-L", Name: "Work Gloves L", PriceCents: 799, Stock: 80},
	}
}

func seedProducts(ctx context.Context, svc *service.ProductService, logger *slog.Logger) int {
	failures := 0
	for _, req := range defaultProducts() {
		created := true
		_, err := svc.Create(ctx, req)
		if errors.Is(err, data.ErrProductSKUExists) {
			created = false
			err = nil
		}
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create product", "sku", req.SKU, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "product already exists"
			if created {
				msg = "created product"
			}
			logger.InfoContext(ctx, msg, "sku", req.SKU)
		}
	}
	return failures
}

func defaultCustomers() []*model.CreateCustomerRequest {
	return []*model.CreateCustomerRequest{
		{
			Name:    "Acme Hardware",
			Email:   "orders@acme-hardware.example.com",
			Phone:   "+1-555-0100",
			Address: "1 Main St, Springfield",
			Note:    "net 30",
		},
		{
			Name:    "Bolt Supply Co",
			Email:   "purchasing@boltsupply.example.com",
			Phone:   "+1-555-0111",
			Address: "42 Industrial Way, Shelbyville",
		},
	}
}

func seedCustomers(ctx context.Context, svc *service.CustomerService, logger *slog.Logger) int {
	failures := 0
	for _, req := range defaultCustomers() {
		// Customer names are not unique; skip any name already present so
		// repeated startups do not pile up duplicates.
		existing, err := svc.List(ctx, req.Name, 1, 0)
		if err == nil && len(existing) > 0 {
			if logger != nil {
				logger.InfoContext(ctx, "customer already exists", "name", req.Name)
			}
			continue
		}

		if _, createErr := svc.Create(ctx, req); createErr != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create customer", "name", req.Name, "error", createErr)
			}
			failures++
			continue
		}
		if logger != nil {
			logger.InfoContext(ctx, "created customer", "name", req.Name)
		}
	}
	return failures
}

// seedDemoOrder places one pending order so the picking and status-transition
// endpoints have data to work with. Skipped when any order already exists.
func seedDemoOrder(ctx context.Context, svcs Services, logger *slog.Logger) error {
	existing, err := svcs.orders.List(ctx, data.ListOrdersOptions{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	customers, err := svcs.customers.List(ctx, "", 1, 0)
	if err != nil {
		return err
	}
	if len(customers) == 0 {
		return errors.New("no customers to place a demo order for")
	}

	products, err := svcs.products.List(ctx, 2, 0)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return errors.New("no products to place a demo order with")
	}

	items := make([]model.CreateOrderItemRequest, 0, len(products))
	for i, p := range products {
		items = append(items, model.CreateOrderItemRequest{ProductID: p.ID, Quantity: i + 1})
	}

	order, err := svcs.orders.Create(ctx, devSeedIdentity, &model.CreateOrderRequest{
		CustomerID: customers[0].ID,
		Items:      items,
	})
	if err != nil {
		return err
	}

	if logger != nil {
		logger.InfoContext(ctx, "created demo order",
			"order_id", order.ID, "customer", customers[0].Name, "total_cents", order.TotalCents())
	}
	return nil
}
