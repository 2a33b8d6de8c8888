package mssql

import (
	"fmt"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

const (
	defaultPort    = 1433
	defaultTimeout = 30 // seconds

	// AuthSQL logs in with WAREHOUSE_USER and WAREHOUSE_PASSWORD.
	AuthSQL = "sql"
	// AuthAzureDefault uses the Azure default credential chain (managed
	// identity, workload identity, az login), chosen when no user is set.
	AuthAzureDefault = "azure_default"
)

// Config holds SQL Server / Azure SQL connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	Schema   string
	Auth     string
	User     string
	Password string

	Encrypt                bool
	TrustServerCertificate bool
	ConnectionTimeout      int
}

// FromMap reads a Config from the warehouse settings map.
func FromMap(m map[string]any) (*Config, error) {
	cfg := &Config{
		Host:              datasource.StringValue(m, "host"),
		Port:              datasource.IntValue(m, "port", defaultPort),
		Database:          datasource.StringValue(m, "database"),
		Schema:            datasource.StringValue(m, "schema"),
		User:              datasource.StringValue(m, "user"),
		Password:          datasource.StringValue(m, "password"),
		Encrypt:           datasource.StringValue(m, "ssl_mode") != "disable",
		ConnectionTimeout: datasource.IntValue(m, "connection_timeout", defaultTimeout),
	}
	if cfg.Schema == "" {
		cfg.Schema = "dbo"
	}
	if trust, ok := m["trust_server_certificate"].(bool); ok {
		cfg.TrustServerCertificate = trust
	}

	cfg.Auth = AuthSQL
	if cfg.User == "" {
		cfg.Auth = AuthAzureDefault
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("host is required")
	case c.Database == "":
		return fmt.Errorf("database is required")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.Auth {
	case AuthSQL:
		if c.User == "" || c.Password == "" {
			return fmt.Errorf("user and password are required for SQL authentication")
		}
	case AuthAzureDefault:
		if !c.Encrypt {
			return fmt.Errorf("azure authentication requires an encrypted connection")
		}
	default:
		return fmt.Errorf("unknown auth method %q", c.Auth)
	}
	return nil
}
