package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/fieldops/fieldops-api/config"
	"github.com/fieldops/fieldops-api/internal/data"
	"github.com/fieldops/fieldops-api/internal/observability/statsd"
	"github.com/fieldops/fieldops-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Customers *service.CustomerService
	Products  *service.ProductService
	Orders    *service.OrderService
	Profiles  *service.ProfileService
	Metrics   *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices constructs the repositories and services backing the API.
func BuildServices(ctx context.Context, deps ServiceDeps) (ServiceContainer, error) {
	profileRepo := data.NewProfileRepo(deps.DB)
	customerRepo := data.NewCustomerRepo(deps.DB)
	productRepo := data.NewProductRepo(deps.DB)
	orderRepo := data.NewOrderRepo(deps.DB)

	metrics, err := buildMetricsClient(deps.Config.Observability.Metrics, deps.Logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build metrics client: %w", err)
	}

	authSvc, err := BuildAuthService(ctx, AuthConfig{
		Auth:        deps.Config.Auth,
		IsDev:       deps.Config.IsDev,
		RedisClient: deps.RedisClient,
		Profiles:    profileRepo,
		Logger:      deps.Logger,
		Metrics:     metrics,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build auth service: %w", err)
	}

	return ServiceContainer{
		Auth:      authSvc,
		Customers: service.NewCustomerService(customerRepo),
		Products:  service.NewProductService(productRepo),
		Orders: service.NewOrderService(service.OrderServiceOptions{
			Orders:    orderRepo,
			Customers: customerRepo,
			Products:  productRepo,
		}),
		Profiles: service.NewProfileService(profileRepo),
		Metrics:  metrics,
	}, nil
}

func buildMetricsClient(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  "fieldops",
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("statsd metrics enabled", "addr", cfg.StatsdAddress)
	}
	return client, nil
}
