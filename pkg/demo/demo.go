// Package demo provides the retail demo warehouse: schema migrations and a
// deterministic sample dataset covering July to October 2025.
package demo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultSeed keeps the generated dataset stable across runs.
const DefaultSeed = 20250701

// Warehouse is the subset of a warehouse adapter seeding needs.
type Warehouse interface {
	Query(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error)
	Execute(ctx context.Context, sqlStatement string) (*datasource.ExecuteResult, error)
}

// Migrate applies the embedded schema migrations to a PostgreSQL database.
// It is idempotent and safe to call multiple times - only pending migrations will be executed.
func Migrate(db *sql.DB, logger *zap.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("Applied migrations successfully", zap.Uint("version", newVersion))
	return nil
}

// SchemaStatements returns the CREATE TABLE statements of every up migration,
// for warehouses golang-migrate has no driver for.
func SchemaStatements() ([]string, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}

	var stmts []string
	for _, name := range files {
		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for _, stmt := range strings.Split(string(body), ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				stmts = append(stmts, stmt)
			}
		}
	}
	return stmts, nil
}

// CreateSchema runs SchemaStatements against w.
func CreateSchema(ctx context.Context, w Warehouse) error {
	stmts, err := SchemaStatements()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := w.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Seed inserts the demo dataset unless DIM_DATE already has rows.
// Returns false when the warehouse was already seeded.
func Seed(ctx context.Context, w Warehouse, logger *zap.Logger) (bool, error) {
	existing, err := w.Query(ctx, "SELECT COUNT(*) FROM DIM_DATE", 1)
	if err != nil {
		return false, fmt.Errorf("check existing data: %w", err)
	}
	if existing.RowCount == 1 && fmt.Sprint(existing.Rows[0][0]) != "0" {
		logger.Info("Demo data already present, skipping seed")
		return false, nil
	}

	stmts := Generate(DefaultSeed).InsertStatements(250)
	for i, stmt := range stmts {
		if _, err := w.Execute(ctx, stmt); err != nil {
			return false, fmt.Errorf("insert batch %d: %w", i+1, err)
		}
	}

	logger.Info("Seeded demo data", zap.Int("statements", len(stmts)))
	return true, nil
}
