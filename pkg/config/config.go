package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultConfigFile is read when present in the working directory.
const DefaultConfigFile = "config.yaml"

// Config holds all configuration for aria-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr       string        `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port           string        `yaml:"port" env:"PORT" env-default:"5000"`
	Env            string        `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"3m"`
	Version        string        `yaml:"-"` // Set at load time, not from config

	Warehouse WarehouseConfig `yaml:"warehouse"`
	LLM       LLMConfig       `yaml:"llm"`
	Assistant AssistantConfig `yaml:"assistant"`
	Schema    SchemaConfig    `yaml:"schema"`
	Upload    UploadConfig    `yaml:"upload"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Auth      AuthConfig      `yaml:"auth"`
	Session   SessionConfig   `yaml:"session"`
}

// WarehouseConfig describes the single data warehouse the assistant reads from.
// The SNOWFLAKE_* names are accepted for every field so existing .env files keep working.
type WarehouseConfig struct {
	Type      string `yaml:"type" env:"WAREHOUSE_TYPE" env-default:"snowflake"`
	Account   string `yaml:"account" env:"WAREHOUSE_ACCOUNT,SNOWFLAKE_ACCOUNT"`
	User      string `yaml:"user" env:"WAREHOUSE_USER,SNOWFLAKE_USER"`
	Password  string `yaml:"-" env:"WAREHOUSE_PASSWORD,SNOWFLAKE_PASSWORD"` // Secret - not in YAML
	Warehouse string `yaml:"warehouse" env:"WAREHOUSE_NAME,SNOWFLAKE_WAREHOUSE"`
	Database  string `yaml:"database" env:"WAREHOUSE_DATABASE,SNOWFLAKE_DATABASE"`
	Schema    string `yaml:"schema" env:"WAREHOUSE_SCHEMA,SNOWFLAKE_SCHEMA"`
	Role      string `yaml:"role" env:"WAREHOUSE_ROLE,SNOWFLAKE_ROLE"`

	// Host/port/path apply to the self-hosted engines (postgres, sqlserver, clickhouse, duckdb).
	Host    string `yaml:"host" env:"WAREHOUSE_HOST" env-default:"localhost"`
	Port    int    `yaml:"port" env:"WAREHOUSE_PORT"`
	SSLMode string `yaml:"ssl_mode" env:"WAREHOUSE_SSL_MODE" env-default:"disable"`
	Path    string `yaml:"path" env:"WAREHOUSE_PATH"`

	// SeedDemo loads the bundled retail demo schema on startup (duckdb only).
	SeedDemo bool `yaml:"seed_demo" env:"WAREHOUSE_SEED_DEMO" env-default:"false"`

	QueryTimeout time.Duration `yaml:"query_timeout" env:"WAREHOUSE_QUERY_TIMEOUT" env-default:"30s"`
	MaxRows      int           `yaml:"max_rows" env:"WAREHOUSE_MAX_ROWS" env-default:"500"`
}

// LLMConfig selects the hosted model used for routing, planning, SQL, and synthesis.
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"gemini"`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:"gemini-2.5-flash-lite"`
	Endpoint    string  `yaml:"endpoint" env:"LLM_ENDPOINT"`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY,GOOGLE_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0"`
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"4096"`

	RetryAttempts         int           `yaml:"retry_attempts" env:"LLM_RETRY_ATTEMPTS" env-default:"3"`
	CircuitBreakerTrips   int           `yaml:"circuit_breaker_threshold" env:"LLM_CIRCUIT_BREAKER_THRESHOLD" env-default:"5"`
	CircuitBreakerTimeout time.Duration `yaml:"circuit_breaker_reset" env:"LLM_CIRCUIT_BREAKER_RESET" env-default:"30s"`
}

// AssistantConfig bounds one plan/gather/synthesize run.
type AssistantConfig struct {
	TimeBudget             time.Duration `yaml:"time_budget" env:"ASSISTANT_TIME_BUDGET" env-default:"60s"`
	MaxConsecutiveFailures int           `yaml:"max_consecutive_failures" env:"ASSISTANT_MAX_CONSECUTIVE_FAILURES" env-default:"5"`
	HistoryLimit           int           `yaml:"history_limit" env:"ASSISTANT_HISTORY_LIMIT" env-default:"6"`

	// DatabaseNotes are appended to the planning and SQL prompts.
	DatabaseNotes []string `yaml:"database_notes"`
}

// SchemaConfig controls the cached schema snapshot.
type SchemaConfig struct {
	// RefreshTTL of 0 keeps the snapshot for the process lifetime.
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"SCHEMA_REFRESH_TTL" env-default:"0s"`
}

// UploadConfig controls the CSV upload staging area.
type UploadConfig struct {
	Dir      string `yaml:"dir" env:"UPLOAD_DIR" env-default:"temp_uploads"`
	MaxBytes int64  `yaml:"max_bytes" env:"UPLOAD_MAX_BYTES" env-default:"33554432"`
}

// DashboardConfig controls the dashboard and analytics endpoints.
type DashboardConfig struct {
	MockMode     bool `yaml:"mock_mode" env:"DASHBOARD_MOCK_MODE" env-default:"false"`
	MockFallback bool `yaml:"mock_fallback" env:"DASHBOARD_MOCK_FALLBACK" env-default:"true"`
	Concurrency  int  `yaml:"concurrency" env:"DASHBOARD_CONCURRENCY" env-default:"4"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	// Enabled controls whether Bearer tokens are required on /api and /mcp.
	// Leave disabled for local development.
	Enabled bool `yaml:"enabled" env:"AUTH_ENABLED" env-default:"false"`

	// JWTSecret verifies HS256 tokens. Ignored when JWKSURL is set.
	JWTSecret string `yaml:"-" env:"AUTH_JWT_SECRET"` // Secret - not in YAML

	// JWKSURL verifies asymmetric tokens against a remote key set.
	JWKSURL string `yaml:"jwks_url" env:"AUTH_JWKS_URL"`
}

// SessionConfig holds the server-side chat session store settings.
type SessionConfig struct {
	Secret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML
	Dir    string `yaml:"dir" env:"SESSION_DIR"`
}

var knownWarehouseTypes = []string{"snowflake", "postgres", "sqlserver", "duckdb", "clickhouse"}

// Load reads configuration from .env, config.yaml (when present) and environment variables.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		if err := cleanenv.ReadConfig(DefaultConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", DefaultConfigFile, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Warehouse.Type = strings.ToLower(strings.TrimSpace(cfg.Warehouse.Type))
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if !isKnownWarehouse(c.Warehouse.Type) {
		return fmt.Errorf("unknown warehouse type %q (expected one of %s)",
			c.Warehouse.Type, strings.Join(knownWarehouseTypes, ", "))
	}
	if c.Warehouse.MaxRows <= 0 {
		return fmt.Errorf("warehouse.max_rows must be positive, got %d", c.Warehouse.MaxRows)
	}
	if c.Warehouse.QueryTimeout <= 0 {
		return fmt.Errorf("warehouse.query_timeout must be positive, got %s", c.Warehouse.QueryTimeout)
	}
	if c.Assistant.TimeBudget <= 0 {
		return fmt.Errorf("assistant.time_budget must be positive, got %s", c.Assistant.TimeBudget)
	}
	if c.Assistant.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("assistant.max_consecutive_failures must be positive, got %d", c.Assistant.MaxConsecutiveFailures)
	}
	if c.Assistant.HistoryLimit <= 0 {
		return fmt.Errorf("assistant.history_limit must be positive, got %d", c.Assistant.HistoryLimit)
	}
	if c.Schema.RefreshTTL < 0 {
		return fmt.Errorf("schema.refresh_ttl must not be negative, got %s", c.Schema.RefreshTTL)
	}
	if c.Dashboard.Concurrency <= 0 {
		return fmt.Errorf("dashboard.concurrency must be positive, got %d", c.Dashboard.Concurrency)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		return fmt.Errorf("auth is enabled but neither AUTH_JWT_SECRET nor auth.jwks_url is set")
	}
	return nil
}

func isKnownWarehouse(t string) bool {
	for _, known := range knownWarehouseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ToMap returns the adapter configuration map consumed by datasource FromMap parsers.
// Empty values are omitted so adapters can apply their own defaults.
func (w *WarehouseConfig) ToMap() map[string]any {
	m := map[string]any{}
	set := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}

	set("account", w.Account)
	set("user", w.User)
	set("password", w.Password)
	set("warehouse", w.Warehouse)
	set("database", w.Database)
	set("schema", w.Schema)
	set("role", w.Role)
	set("ssl_mode", w.SSLMode)
	set("path", w.Path)
	if w.Host != "" {
		m["host"] = ResolveHostForDocker(w.Host)
	}
	if w.Port > 0 {
		m["port"] = w.Port
	}
	return m
}
