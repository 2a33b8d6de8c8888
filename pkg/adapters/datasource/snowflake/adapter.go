// Package snowflake is the Snowflake warehouse adapter.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

const discoverColumnsQuery = `
	SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = ?
	ORDER BY TABLE_NAME, ORDINAL_POSITION`

// Config contains Snowflake connection options.
type Config struct {
	Account   string
	User      string
	Password  string
	Warehouse string
	Database  string
	Schema    string
	Role      string
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Password:  datasource.StringValue(config, "password"),
		Warehouse: datasource.StringValue(config, "warehouse"),
		Role:      datasource.StringValue(config, "role"),
	}

	var err error
	if cfg.Account, err = datasource.RequiredString(config, "account"); err != nil {
		return nil, err
	}
	if cfg.User, err = datasource.RequiredString(config, "user"); err != nil {
		return nil, err
	}
	if cfg.Database, err = datasource.RequiredString(config, "database"); err != nil {
		return nil, err
	}
	if cfg.Schema, err = datasource.RequiredString(config, "schema"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildDSN renders cfg as a gosnowflake DSN.
func buildDSN(cfg *Config) (string, error) {
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	})
}

// Adapter provides Snowflake connectivity.
type Adapter struct {
	config *Config
	db     *sql.DB
	logger *zap.Logger
}

// NewAdapter opens a Snowflake handle. The first query establishes the session.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("build snowflake dsn: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snowflake connection: %w", err)
	}

	return &Adapter{config: cfg, db: db, logger: logger}, nil
}

// TestConnection verifies the account is reachable and the session has a warehouse.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var warehouse sql.NullString
	if err := a.db.QueryRowContext(ctx, "SELECT CURRENT_WAREHOUSE()").Scan(&warehouse); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	if !warehouse.Valid {
		return fmt.Errorf("no active warehouse for user %s", a.config.User)
	}
	return nil
}

// DiscoverColumns returns every column of the configured schema, including views.
func (a *Adapter) DiscoverColumns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	return datasource.DiscoverColumnsDB(ctx, a.db, discoverColumnsQuery, strings.ToUpper(a.config.Schema))
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
	return "Snowflake"
}

// Close releases the connection.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ensure Adapter implements the datasource interfaces at compile time.
var (
	_ datasource.Adapter    = (*Adapter)(nil)
	_ datasource.BulkLoader = (*Adapter)(nil)
)
