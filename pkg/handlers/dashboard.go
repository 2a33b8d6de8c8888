package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/dashboard"
)

// DashboardService supplies dashboard data. *dashboard.Service satisfies it.
type DashboardService interface {
	Summary(ctx context.Context) (*dashboard.Summary, error)
	Analytics(ctx context.Context) (*dashboard.Analytics, error)
}

// DashboardHandler serves the dashboard and analytics pages.
type DashboardHandler struct {
	service DashboardService
	logger  *zap.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(service DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, logger: logger}
}

// RegisterRoutes registers the dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard-data", h.DashboardData)
	r.Get("/api/analytics-data", h.AnalyticsData)
}

// DashboardData handles GET /api/dashboard-data.
func (h *DashboardHandler) DashboardData(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to fetch dashboard data.")
		return
	}
	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to write dashboard response", zap.Error(err))
	}
}

// AnalyticsData handles GET /api/analytics-data.
func (h *DashboardHandler) AnalyticsData(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.Analytics(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to fetch analytics data.")
		return
	}
	if err := WriteJSON(w, http.StatusOK, analytics); err != nil {
		h.logger.Error("Failed to write analytics response", zap.Error(err))
	}
}
