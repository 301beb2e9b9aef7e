package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	"github.com/fieldops/fieldops-api/internal/observability/statsd"
	"github.com/fieldops/fieldops-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      AuthServiceInterface
	Customers *service.CustomerService
	Products  *service.ProductService
	Orders    *service.OrderService
	Profiles  *service.ProfileService
	Logger    *slog.Logger
	Metrics   *statsd.Client
}

// NewRouter creates and configures the HTTP router. Every /api route runs
// behind the verify-resolve-authorize pipeline; role policy is applied per
// route group here and nowhere else.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fieldOrAdmin := RequireRole(services.Auth, logger, domainauth.RoleFieldSales, domainauth.RoleAdmin)
	warehouseOrAdmin := RequireRole(services.Auth, logger, domainauth.RoleWarehousePicking, domainauth.RoleAdmin)
	adminOnly := RequireRole(services.Auth, logger, domainauth.RoleAdmin)
	anyActive := RequireAuth(services.Auth, logger)

	registerCustomerRoutes(mux, &CustomerHandlers{Svc: services.Customers}, fieldOrAdmin)
	registerProductRoutes(mux, &ProductHandlers{Svc: services.Products}, anyActive, adminOnly)
	registerOrderRoutes(mux, &OrderHandlers{Svc: services.Orders}, fieldOrAdmin, warehouseOrAdmin)
	registerProfileRoutes(mux, &ProfileHandlers{Svc: services.Profiles}, adminOnly)

	mux.Handle("GET /api/me", anyActive(http.HandlerFunc(MeHandler)))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = Metrics(services.Metrics)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// middleware wraps a single http.Handler.
type middleware func(http.Handler) http.Handler

type crudRoutes struct {
	Base       string
	Create     http.HandlerFunc
	List       http.HandlerFunc
	GetByID    http.HandlerFunc
	Update     http.HandlerFunc
	Delete     http.HandlerFunc
	Middleware middleware
}

func registerCRUD(mux *http.ServeMux, cfg crudRoutes) {
	if cfg.Base == "" {
		panic("registerCRUD: Base must not be empty") //nolint:forbidigo // Fail fast during server setup.
	}
	if cfg.Create == nil ||
		cfg.List == nil ||
		cfg.GetByID == nil ||
		cfg.Update == nil ||
		cfg.Delete == nil {
		panic("registerCRUD: nil handler for base " + cfg.Base) //nolint:forbidigo // Fail fast during server setup.
	}

	wrap := func(h http.HandlerFunc) http.Handler {
		if cfg.Middleware != nil {
			return cfg.Middleware(h)
		}
		return h
	}
	mux.Handle("POST "+cfg.Base, wrap(cfg.Create))
	mux.Handle("GET "+cfg.Base, wrap(cfg.List))
	mux.Handle("GET "+cfg.Base+"/{id}", wrap(cfg.GetByID))
	mux.Handle("PUT "+cfg.Base+"/{id}", wrap(cfg.Update))
	mux.Handle("DELETE "+cfg.Base+"/{id}", wrap(cfg.Delete))
}

func registerCustomerRoutes(mux *http.ServeMux, h *CustomerHandlers, mw middleware) {
	registerCRUD(mux, crudRoutes{
		Base:       "/api/customers",
		Create:     h.Create,
		List:       h.List,
		GetByID:    h.GetByID,
		Update:     h.Update,
		Delete:     h.Delete,
		Middleware: mw,
	})
}

// registerProductRoutes splits the catalog policy: any active profile may
// read, only admins may write.
func registerProductRoutes(mux *http.ServeMux, h *ProductHandlers, read, write middleware) {
	mux.Handle("GET /api/products", read(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/products/{id}", read(http.HandlerFunc(h.GetByID)))
	mux.Handle("POST /api/products", write(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /api/products/{id}", write(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/products/{id}", write(http.HandlerFunc(h.Delete)))
}

// registerOrderRoutes applies the fulfillment policy: field sales place and
// track orders, warehouse picking moves them through the fulfillment states.
func registerOrderRoutes(mux *http.ServeMux, h *OrderHandlers, sales, warehouse middleware) {
	mux.Handle("POST /api/orders", sales(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/orders", sales(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/orders/{id}", sales(http.HandlerFunc(h.GetByID)))
	mux.Handle("PUT /api/orders/{id}/status", warehouse(http.HandlerFunc(h.UpdateStatus)))
}

func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers, mw middleware) {
	mux.Handle("GET /api/profiles", mw(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/profiles/{id}", mw(http.HandlerFunc(h.GetByID)))
	mux.Handle("PUT /api/profiles/{id}", mw(http.HandlerFunc(h.Update)))
}
