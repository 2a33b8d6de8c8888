// Package clickhouse is the ClickHouse warehouse adapter. Bulk loading is not supported.
package clickhouse

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

const discoverColumnsQuery = `
	SELECT table, name, upper(type)
	FROM system.columns
	WHERE database = ?
	ORDER BY table, position`

// Config contains ClickHouse connection options.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	UseTLS   bool
}

// DefaultPort returns the native protocol port.
func DefaultPort() int {
	return 9000
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Port:     datasource.IntValue(config, "port", DefaultPort()),
		User:     datasource.StringValue(config, "user"),
		Password: datasource.StringValue(config, "password"),
		Database: datasource.StringValue(config, "database"),
	}

	var err error
	if cfg.Host, err = datasource.RequiredString(config, "host"); err != nil {
		return nil, err
	}
	if cfg.User == "" {
		cfg.User = "default"
	}
	if cfg.Database == "" {
		cfg.Database = "default"
	}
	if mode := datasource.StringValue(config, "ssl_mode"); mode != "" && mode != "disable" {
		cfg.UseTLS = true
	}
	return cfg, nil
}

func (c *Config) options() *clickhouse.Options {
	opts := &clickhouse.Options{
		Addr: []string{net.JoinHostPort(c.Host, strconv.Itoa(c.Port))},
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.User,
			Password: c.Password,
		},
		DialTimeout: 10 * time.Second,
	}
	if c.UseTLS {
		opts.TLS = &tls.Config{}
	}
	return opts
}

// Adapter provides ClickHouse connectivity through the database/sql interface.
type Adapter struct {
	config *Config
	db     *sql.DB
	logger *zap.Logger
}

// NewAdapter opens a ClickHouse handle.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		config: cfg,
		db:     clickhouse.OpenDB(cfg.options()),
		logger: logger,
	}, nil
}

// TestConnection verifies the server is reachable.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// DiscoverColumns returns the columns of every table in the configured database.
func (a *Adapter) DiscoverColumns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	return datasource.DiscoverColumnsDB(ctx, a.db, discoverColumnsQuery, a.config.Database)
}

// Query runs a statement and returns bounded results.
func (a *Adapter) Query(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error) {
	return datasource.QueryDB(ctx, a.db, sqlQuery, limit)
}

// Execute runs any SQL statement.
func (a *Adapter) Execute(ctx context.Context, sqlStatement string) (*datasource.ExecuteResult, error) {
	return datasource.ExecDB(ctx, a.db, sqlStatement)
}

// Dialect implements datasource.Adapter.
func (a *Adapter) Dialect() string {
	return "ClickHouse"
}

// Close releases the connection.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ensure Adapter implements datasource.Adapter at compile time.
var _ datasource.Adapter = (*Adapter)(nil)
