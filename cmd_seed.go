package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx database/sql driver for migrations
	"github.com/spf13/cobra"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/postgres"
	"github.com/ekaya-inc/aria-engine/pkg/demo"
)

func newSeedDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Create the retail demo tables and load sample data",
		Long: `Create DIM_DATE, DIM_PRODUCT, DIM_STORE, DIM_PROMOTION, FACT_SALES_DAILY and
FACT_SPOILAGE_DAILY in the configured warehouse and fill them with
deterministic sample data for July to October 2025. PostgreSQL warehouses
are migrated with versioned migrations; other engines get the same DDL
directly. Existing data is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Warehouse.Type == "postgres" {
				if err := migratePostgres(cmd.Context(), a); err != nil {
					return err
				}
			}
			return seedEmbedded(cmd.Context(), a)
		},
	}
}

func migratePostgres(ctx context.Context, a *app) error {
	pgCfg, err := postgres.FromMap(a.cfg.Warehouse.ToMap())
	if err != nil {
		return err
	}
	db, err := sql.Open("pgx", pgCfg.URL())
	if err != nil {
		return fmt.Errorf("failed to open postgres: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return demo.Migrate(db, a.logger)
}
