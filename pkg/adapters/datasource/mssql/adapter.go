package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"         // sqlserver driver
	_ "github.com/microsoft/go-mssqldb/azuread" // azuresql driver (fedauth)
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

const discoverColumnsQuery = `
	SELECT c.TABLE_NAME, c.COLUMN_NAME, UPPER(c.DATA_TYPE)
	FROM INFORMATION_SCHEMA.COLUMNS c
	JOIN INFORMATION_SCHEMA.TABLES t
	  ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
	WHERE c.TABLE_SCHEMA = @p1 AND t.TABLE_TYPE = 'BASE TABLE'
	ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

// Adapter talks to SQL Server or Azure SQL. It has no bulk loader.
type Adapter struct {
	config *Config
	db     *sql.DB
	logger *zap.Logger
}

func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	driver, dsn := connectionURL(cfg)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver (%s auth): %w", cfg.Auth, err)
	}
	logger.Debug("Opened SQL Server pool",
		zap.String("host", cfg.Host), zap.String("database", cfg.Database), zap.String("auth", cfg.Auth))

	return &Adapter{config: cfg, db: db, logger: logger}, nil
}

// connectionURL picks the driver for cfg.Auth and renders its sqlserver:// URL.
func connectionURL(cfg *Config) (driver string, dsn string) {
	q := url.Values{}
	q.Set("database", cfg.Database)
	q.Set("encrypt", strconv.FormatBool(cfg.Encrypt))
	q.Set("app name", "aria-engine")
	if cfg.TrustServerCertificate {
		q.Set("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeout > 0 {
		q.Set("connection timeout", strconv.Itoa(cfg.ConnectionTimeout))
	}

	u := url.URL{
		Scheme: "sqlserver",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	driver = "sqlserver"
	if cfg.Auth == AuthAzureDefault {
		q.Set("fedauth", "ActiveDirectoryDefault")
		driver = "azuresql"
	} else {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	u.RawQuery = q.Encode()
	return driver, u.String()
}

// TestConnection verifies the database is reachable and is the configured database.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var currentDB string
	if err := a.db.QueryRowContext(ctx, "SELECT DB_NAME()").Scan(&currentDB); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	if !strings.EqualFold(currentDB, a.config.Database) {
		return fmt.Errorf("connected to wrong database: expected %q but connected to %q", a.config.Database, currentDB)
	}
	return nil
}

// DiscoverColumns returns the columns of every base table in the configured schema.
func (a *Adapter) DiscoverColumns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	return datasource.DiscoverColumnsDB(ctx, a.db, discoverColumnsQuery, a.config.Schema)
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
	return "Microsoft SQL Server (T-SQL)"
}

// Close releases the connection.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ensure Adapter implements datasource.Adapter at compile time.
var _ datasource.Adapter = (*Adapter)(nil)
