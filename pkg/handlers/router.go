package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/auth"
	"github.com/ekaya-inc/aria-engine/pkg/middleware"
)

// RouteRegistrar is implemented by every handler in this package.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// RouterConfig assembles the HTTP surface.
type RouterConfig struct {
	Health *HealthHandler

	// API handlers sit behind Auth and the request timeout.
	API []RouteRegistrar

	// MCP is mounted at /mcp behind Auth when non-nil.
	MCP http.Handler

	Auth           *auth.Middleware
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter builds the chi router. Health, ping and metrics stay public.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth.RequireAuth)
		}

		if cfg.MCP != nil {
			mcp := middleware.MCPToolLogger(cfg.Logger)(cfg.MCP)
			r.Handle("/mcp", mcp)
			r.Handle("/mcp/*", mcp)
		}

		r.Group(func(r chi.Router) {
			if cfg.RequestTimeout > 0 {
				r.Use(chimw.Timeout(cfg.RequestTimeout))
			}
			for _, h := range cfg.API {
				h.RegisterRoutes(r)
			}
		})
	})

	return r
}
