package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

// Adapter is a pgx pool against one PostgreSQL database.
type Adapter struct {
	config *Config
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "aria-engine"
	// Unqualified table names in generated SQL resolve against the configured schema.
	if cfg.Schema != "" {
		poolCfg.ConnConfig.RuntimeParams["search_path"] = cfg.Schema
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Debug("Opened PostgreSQL pool",
		zap.String("host", cfg.Host), zap.String("database", cfg.Database), zap.String("schema", cfg.Schema))

	return &Adapter{config: cfg, pool: pool, logger: logger}, nil
}

// TestConnection pings the server and makes sure the session landed on the
// configured database rather than a default one.
func (a *Adapter) TestConnection(ctx context.Context) error {
	var currentDB string
	if err := a.pool.QueryRow(ctx, "SELECT current_database()").Scan(&currentDB); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	if !strings.EqualFold(currentDB, a.config.Database) {
		return fmt.Errorf("connected to wrong database: expected %q but connected to %q", a.config.Database, currentDB)
	}
	return nil
}

func (a *Adapter) Dialect() string {
	return "PostgreSQL"
}

func (a *Adapter) Close() error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

var (
	_ datasource.Adapter    = (*Adapter)(nil)
	_ datasource.BulkLoader = (*Adapter)(nil)
)
