package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    AuthMode
		expectError bool
	}{
		{
			name:     "oidc",
			input:    "oidc",
			expected: AuthModeOIDC,
		},
		{
			name:     "rest",
			input:    "rest",
			expected: AuthModeRest,
		},
		{
			name:     "static",
			input:    "static",
			expected: AuthModeStatic,
		},
		{
			name:     "uppercase is normalised",
			input:    "OIDC",
			expected: AuthModeOIDC,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "unknown mode",
			input:       "saml",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if mode != tt.expected {
				t.Errorf("expected mode %q, got %q", tt.expected, mode)
			}
		})
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "rest")
	t.Setenv("REST_IDP_BASE_URL", "https://idp.example.com/api")
	t.Setenv("REST_IDP_VERIFY_PATH", "/session")
	t.Setenv("REST_IDP_ACCOUNT_PATH", "/accounts/{id}")
	t.Setenv("REST_IDP_ADMIN_TOKEN", "svc-token")
	t.Setenv("REST_IDP_ID_EXPR", "data.user.id")
	t.Setenv("REST_IDP_EMAIL_EXPR", "data.user.email")
	t.Setenv("AUTH_VERIFY_CACHE_TTL", "5m")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeRest,
		OIDC: OIDCConfig{
			ClientID: "fieldops",
		},
		Rest: RestIDPConfig{
			BaseURL:     "https://idp.example.com/api",
			VerifyPath:  "/session",
			AccountPath: "/accounts/{id}",
			AdminToken:  "svc-token",
			IDExpr:      "data.user.id",
			EmailExpr:   "data.user.email",
		},
		Static: StaticAuthConfig{
			Token:    "dev-token",
			Identity: "dev-user",
			Email:    "dev@example.com",
		},
		VerifyCacheTTL: 5 * time.Minute,
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAppConfig_ParseDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	if cfg.Auth.Mode != AuthModeOIDC {
		t.Errorf("expected default auth mode %q, got %q", AuthModeOIDC, cfg.Auth.Mode)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default http addr :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ReadTimeout != 15*time.Second {
		t.Errorf("expected default read timeout 15s, got %v", cfg.HTTP.ReadTimeout)
	}
	if cfg.Auth.VerifyCacheTTL != time.Minute {
		t.Errorf("expected default verify cache ttl 1m, got %v", cfg.Auth.VerifyCacheTTL)
	}
	if cfg.Postgres.Host != "localhost" {
		t.Errorf("expected default db host localhost, got %q", cfg.Postgres.Host)
	}
	if cfg.Redis.Enabled {
		t.Error("expected redis to be disabled by default")
	}
	if cfg.Observability.Metrics.Enabled {
		t.Error("expected metrics to be disabled by default")
	}
}

func TestAuthConfig_Sanitize(t *testing.T) {
	cfg := AuthConfig{
		VerifyCacheTTL: -time.Minute,
		Rest: RestIDPConfig{
			BaseURL: " https://idp.example.com/api/ ",
		},
	}

	cfg.Sanitize()

	if cfg.VerifyCacheTTL != 0 {
		t.Errorf("expected negative cache ttl to be clamped to 0, got %v", cfg.VerifyCacheTTL)
	}
	if cfg.Rest.BaseURL != "https://idp.example.com/api" {
		t.Errorf("expected base url to be trimmed, got %q", cfg.Rest.BaseURL)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{
		MaxConns:        -5,
		ReadTimeout:     0,
		WriteTimeout:    -time.Second,
		ShutdownTimeout: 0,
	}

	cfg.Sanitize()

	if cfg.MaxConns != 0 {
		t.Errorf("expected negative max conns to be clamped to 0, got %d", cfg.MaxConns)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("expected read timeout fallback 15s, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 30*time.Second {
		t.Errorf("expected write timeout fallback 30s, got %v", cfg.WriteTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout fallback 10s, got %v", cfg.ShutdownTimeout)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	tests := []struct {
		name     string
		dev      bool
		appEnv   string
		expected bool
	}{
		{name: "explicit dev flag", dev: true, appEnv: "", expected: true},
		{name: "app env development", dev: false, appEnv: "development", expected: true},
		{name: "app env dev", dev: false, appEnv: "dev", expected: true},
		{name: "app env mixed case", dev: false, appEnv: "Development", expected: true},
		{name: "production", dev: false, appEnv: "production", expected: false},
		{name: "unset", dev: false, appEnv: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.appEnv)

			cfg := AppConfig{IsDev: tt.dev}
			cfg.Sanitize()

			if cfg.IsDev != tt.expected {
				t.Errorf("expected IsDev=%v, got %v", tt.expected, cfg.IsDev)
			}
		})
	}
}
