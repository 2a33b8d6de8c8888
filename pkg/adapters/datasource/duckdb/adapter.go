// Package duckdb is the local warehouse adapter, used for demos and tests.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "aria.duckdb"

const discoverColumnsQuery = `
	SELECT c.table_name, c.column_name, upper(c.data_type)
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
	WHERE c.table_schema = ? AND t.table_type = 'BASE TABLE'
	ORDER BY c.table_name, c.ordinal_position`

// Config contains DuckDB connection options.
type Config struct {
	Path   string
	Schema string
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Path:   datasource.StringValue(config, "path"),
		Schema: datasource.StringValue(config, "schema"),
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Schema == "" {
		cfg.Schema = "main"
	}
	return cfg, nil
}

// Adapter provides DuckDB connectivity over a database file.
type Adapter struct {
	config *Config
	db     *sql.DB
	logger *zap.Logger
}

// NewAdapter opens the configured database file, creating it if missing.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	return &Adapter{config: cfg, db: db, logger: logger}, nil
}

// TestConnection verifies the database file can be queried.
func (a *Adapter) TestConnection(ctx context.Context) error {
	var one int
	if err := a.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("test query failed: %w", err)
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

// LoadCSV inserts the mapped columns of a CSV file with read_csv. Rows that
// fail to parse are skipped.
func (a *Adapter) LoadCSV(ctx context.Context, req datasource.BulkLoadRequest) (*datasource.BulkLoadResult, error) {
	if len(req.Mappings) == 0 {
		return nil, fmt.Errorf("no column mappings")
	}

	path, err := filepath.Abs(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("resolve csv path: %w", err)
	}

	targets := make([]string, len(req.Mappings))
	sources := make([]string, len(req.Mappings))
	for i, m := range req.Mappings {
		targets[i] = datasource.QuoteIdentifier(m.Target)
		sources[i] = datasource.QuoteIdentifier(m.Source)
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM read_csv(%s, header = true, all_varchar = true, ignore_errors = true)",
		datasource.QuoteIdentifier(req.Table),
		strings.Join(targets, ", "),
		strings.Join(sources, ", "),
		datasource.QuoteLiteral(path),
	)

	res, err := datasource.ExecDB(ctx, a.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", req.Table, err)
	}

	a.logger.Info("Loaded CSV",
		zap.String("table", req.Table),
		zap.Int64("rows", res.RowsAffected))
	return &datasource.BulkLoadResult{RowsLoaded: res.RowsAffected}, nil
}

// Dialect implements datasource.Adapter.
func (a *Adapter) Dialect() string {
	return "DuckDB"
}

// Close releases the database handle.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ensure Adapter implements the datasource interfaces at compile time.
var (
	_ datasource.Adapter    = (*Adapter)(nil)
	_ datasource.BulkLoader = (*Adapter)(nil)
)
