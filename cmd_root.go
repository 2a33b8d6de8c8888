package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/all" // Register warehouse adapters
	"github.com/ekaya-inc/aria-engine/pkg/assistant"
	"github.com/ekaya-inc/aria-engine/pkg/config"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/logging"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
	sqlpkg "github.com/ekaya-inc/aria-engine/pkg/sql"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

var logLevel string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aria",
		Short: "Aria answers retail questions from your data warehouse",
		Long: `Aria is a retail analytics assistant. It classifies each question, plans
the SQL needed to answer it, runs that SQL read-only against the configured
warehouse and writes a plain-English answer.

Configuration comes from config.yaml, .env and environment variables.`,
		SilenceUsage: true,
		Version:      Version,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newAskCmd(),
		newSchemaCmd(),
		newQueryCmd(),
		newSeedDemoCmd(),
		newCheckCmd(),
	)
	return root
}

// app holds the components every command shares.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	executor *warehouse.Executor
	schema   *schema.Provider
}

// newApp loads configuration and wires the warehouse and schema layers.
func newApp() (*app, error) {
	cfg, err := config.Load(Version)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	factory := datasource.NewDatasourceAdapterFactory(logger)
	executor := warehouse.NewExecutor(factory, cfg.Warehouse, sqlpkg.NewGuard(), logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		executor: executor,
		schema:   schema.NewProvider(executor, cfg.Schema.RefreshTTL, logger),
	}, nil
}

// llmClient builds the configured model client with retries and a circuit breaker.
func (a *app) llmClient(ctx context.Context) (llm.LLMClient, error) {
	client, err := llm.NewClientFromConfig(ctx, a.cfg.LLM, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// assistant wires the intent router and orchestrator around client.
func (a *app) assistant(client llm.LLMClient) *assistant.Service {
	router := assistant.NewRouter(client, a.cfg.LLM.Temperature, a.logger)
	orchestrator := assistant.NewOrchestrator(client, a.executor, nil, assistant.OrchestratorConfig{
		TimeBudget:             a.cfg.Assistant.TimeBudget,
		MaxConsecutiveFailures: a.cfg.Assistant.MaxConsecutiveFailures,
		HistoryLimit:           a.cfg.Assistant.HistoryLimit,
		Temperature:            a.cfg.LLM.Temperature,
		Notes:                  a.cfg.Assistant.DatabaseNotes,
	}, a.logger)
	return assistant.NewService(a.schema, router, orchestrator, a.cfg.Assistant.HistoryLimit, a.logger)
}

func (a *app) Close() {
	_ = a.logger.Sync()
}
