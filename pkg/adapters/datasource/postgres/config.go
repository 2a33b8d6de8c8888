package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

const (
	defaultPort    = 5432
	defaultSSLMode = "require"
	defaultSchema  = "public"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string // disable, require, verify-ca, verify-full
}

// FromMap reads a Config from the warehouse settings map, applying defaults.
func FromMap(m map[string]any) (*Config, error) {
	cfg := &Config{
		Host:     datasource.StringValue(m, "host"),
		Port:     datasource.IntValue(m, "port", defaultPort),
		User:     datasource.StringValue(m, "user"),
		Password: datasource.StringValue(m, "password"),
		Database: datasource.StringValue(m, "database"),
		Schema:   datasource.StringValue(m, "schema"),
		SSLMode:  datasource.StringValue(m, "ssl_mode"),
	}
	if cfg.Schema == "" {
		cfg.Schema = defaultSchema
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = defaultSSLMode
	}

	for _, req := range []struct{ key, value string }{
		{"host", cfg.Host}, {"user", cfg.User}, {"database", cfg.Database},
	} {
		if req.value == "" {
			return nil, fmt.Errorf("%s is required", req.key)
		}
	}
	return cfg, nil
}

// URL renders the config as a postgres:// connection URL. Credentials and
// database name are escaped.
func (c *Config) URL() string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}
