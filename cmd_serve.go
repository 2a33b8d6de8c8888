package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/auth"
	"github.com/ekaya-inc/aria-engine/pkg/dashboard"
	"github.com/ekaya-inc/aria-engine/pkg/demo"
	"github.com/ekaya-inc/aria-engine/pkg/handlers"
	"github.com/ekaya-inc/aria-engine/pkg/mcp"
	"github.com/ekaya-inc/aria-engine/pkg/mcp/tools"
	"github.com/ekaya-inc/aria-engine/pkg/metrics"
	"github.com/ekaya-inc/aria-engine/pkg/upload"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and MCP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("warehouse", cfg.Warehouse.Type),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("auth", cfg.Auth.Enabled),
		zap.Bool("dashboard_mock", cfg.Dashboard.MockMode))
	metrics.BuildInfo.WithLabelValues(cfg.Version).Set(1)

	if cfg.Warehouse.SeedDemo {
		if err := seedEmbedded(ctx, a); err != nil {
			return err
		}
	}

	client, err := a.llmClient(ctx)
	if err != nil {
		return err
	}
	service := a.assistant(client)

	// Warm the schema cache; a failure here is retried on first use.
	if _, err := a.schema.Get(ctx); err != nil {
		logger.Warn("Initial schema load failed", zap.Error(err))
	}

	store, err := upload.NewStore(cfg.Upload.Dir, cfg.Upload.MaxBytes, logger)
	if err != nil {
		return err
	}
	planner := upload.NewPlanner(client, a.schema, store, cfg.LLM.Temperature, logger)
	loader := upload.NewLoader(store, a.schema, a.executor, logger)

	dash := dashboard.NewService(a.executor, cfg.Dashboard, logger)
	defer dash.Close()

	validator, err := auth.NewValidator(ctx, cfg.Auth)
	if err != nil {
		return err
	}
	var authMW *auth.Middleware
	if validator != nil {
		defer validator.Close()
		authMW = auth.NewMiddleware(validator, logger)
	}

	// Without a secret, chat history only comes from the request body.
	var sessionStore sessions.Store
	if cfg.Session.Secret != "" {
		sessionStore = handlers.NewSessionStore(cfg.Session.Dir, cfg.Session.Secret, cfg.Env != "local")
	} else {
		logger.Warn("SESSION_SECRET not set, server-side chat history disabled")
	}

	mcpServer := mcp.NewServer("aria-engine", cfg.Version, &tools.Deps{
		Assistant: service,
		Schema:    a.schema,
		Runner:    a.executor,
		Pinger:    a.executor,
	}, logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		Health: handlers.NewHealthHandler(cfg, a.executor, logger),
		API: []handlers.RouteRegistrar{
			handlers.NewChatHandler(service, sessionStore, logger),
			handlers.NewUploadHandler(store, planner, loader, logger),
			handlers.NewDashboardHandler(dash, logger),
			handlers.NewSchemaHandler(a.schema, logger),
		},
		MCP:            mcpServer.Handler(),
		Auth:           authMW,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting aria-engine", zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// seedEmbedded loads the demo schema and data into the configured warehouse.
func seedEmbedded(ctx context.Context, a *app) error {
	adapter, err := a.executor.Open(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close()

	if err := demo.CreateSchema(ctx, adapter); err != nil {
		return err
	}
	if _, err := demo.Seed(ctx, adapter, a.logger); err != nil {
		return err
	}
	a.logger.Info("Demo warehouse ready", zap.String("warehouse", a.cfg.Warehouse.Type))
	return nil
}
