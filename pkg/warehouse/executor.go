// Package warehouse runs guarded, read-only SQL against the configured data
// warehouse, opening a fresh connection for every call.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/aria-engine/pkg/audit"
	"github.com/ekaya-inc/aria-engine/pkg/config"
	"github.com/ekaya-inc/aria-engine/pkg/logging"
	"github.com/ekaya-inc/aria-engine/pkg/metrics"
	"github.com/ekaya-inc/aria-engine/pkg/retry"
	sqlpkg "github.com/ekaya-inc/aria-engine/pkg/sql"
)

// Executor opens warehouse connections through the adapter registry.
type Executor struct {
	factory datasource.DatasourceAdapterFactory
	dsType  string
	config  map[string]any
	guard   *sqlpkg.Guard
	auditor *audit.SecurityAuditor

	queryTimeout time.Duration
	maxRows      int
	retryCfg     *retry.Config
	logger       *zap.Logger
}

// NewExecutor returns an executor for the warehouse described by cfg.
func NewExecutor(factory datasource.DatasourceAdapterFactory, cfg config.WarehouseConfig, guard *sqlpkg.Guard, logger *zap.Logger) *Executor {
	if guard == nil {
		guard = sqlpkg.NewGuard()
	}
	return &Executor{
		factory:      factory,
		dsType:       cfg.Type,
		config:       cfg.ToMap(),
		guard:        guard,
		auditor:      audit.NewSecurityAuditor(logger),
		queryTimeout: cfg.QueryTimeout,
		maxRows:      cfg.MaxRows,
		retryCfg:     retryConfig(logger),
		logger:       logger.Named("warehouse"),
	}
}

func retryConfig(logger *zap.Logger) *retry.Config {
	cfg := retry.DefaultConfig()
	cfg.OnRetry = func(err error, wait time.Duration) {
		logger.Warn("Warehouse connection failed, retrying",
			zap.Duration("wait", wait), zap.String("error", logging.SanitizeError(err)))
	}
	return cfg
}

// Type returns the configured warehouse type.
func (e *Executor) Type() string {
	return e.dsType
}

// Open connects to the warehouse. Transient connection failures are retried.
// The caller must Close the adapter.
func (e *Executor) Open(ctx context.Context) (datasource.Adapter, error) {
	adapter, err := retry.DoValue(ctx, e.retryCfg, func() (datasource.Adapter, error) {
		return e.factory.NewAdapter(ctx, e.dsType, e.config)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s warehouse: %w", e.dsType, err)
	}
	return adapter, nil
}

// Run checks q with the SQL guard and executes it on a fresh connection.
// Every failure is reported through the Result, never as a panic or nil.
func (e *Executor) Run(ctx context.Context, q string) *Result {
	start := time.Now()
	res := e.run(ctx, q)
	res.Elapsed = time.Since(start)

	metrics.WarehouseQueryDuration.WithLabelValues(string(res.Status)).Observe(res.Elapsed.Seconds())
	if res.Status == StatusError {
		e.logger.Warn("Query failed",
			zap.String("sql", logging.SanitizeQuery(res.SQL)),
			zap.String("error", logging.SanitizeError(res.Err)))
	} else {
		e.logger.Debug("Query executed",
			zap.String("status", string(res.Status)),
			zap.Int("rows", len(res.Rows)),
			zap.Duration("elapsed", res.Elapsed))
	}
	return res
}

func (e *Executor) run(ctx context.Context, q string) *Result {
	safe, err := e.guard.Check(q)
	if err != nil {
		e.auditor.LogRejectedQuery(ctx, q, err)
		return errorResult(q, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	adapter, err := e.Open(ctx)
	if err != nil {
		return errorResult(safe, err)
	}
	defer adapter.Close()

	qr, err := adapter.Query(ctx, safe, e.maxRows)
	if err != nil {
		return errorResult(safe, err)
	}

	res := &Result{
		SQL:       safe,
		Columns:   qr.ColumnNames(),
		Rows:      qr.Rows,
		Truncated: qr.Truncated,
	}
	if len(qr.Rows) == 0 {
		res.Status = StatusNoRows
	} else {
		res.Status = StatusRows
	}
	return res
}

// Describe returns the warehouse dialect and its column metadata.
func (e *Executor) Describe(ctx context.Context) (string, []datasource.ColumnMetadata, error) {
	adapter, err := e.Open(ctx)
	if err != nil {
		return "", nil, err
	}
	defer adapter.Close()

	columns, err := adapter.DiscoverColumns(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to discover columns: %w", err)
	}
	return adapter.Dialect(), columns, nil
}

// Ping verifies that the warehouse accepts connections.
func (e *Executor) Ping(ctx context.Context) error {
	adapter, err := e.Open(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close()
	return adapter.TestConnection(ctx)
}
