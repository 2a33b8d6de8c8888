package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/schema"
)

// SchemaProvider serves the cached warehouse schema. *schema.Provider satisfies it.
type SchemaProvider interface {
	Get(ctx context.Context) (*schema.Snapshot, error)
	Refresh(ctx context.Context) (*schema.Snapshot, error)
}

// SchemaHandler exposes the schema snapshot the assistant works from.
type SchemaHandler struct {
	provider SchemaProvider
	logger   *zap.Logger
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(provider SchemaProvider, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{provider: provider, logger: logger}
}

// RegisterRoutes registers the schema routes.
func (h *SchemaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/schema", h.GetSchema)
	r.Post("/api/schema/refresh", h.RefreshSchema)
}

// GetSchema handles GET /api/schema.
func (h *SchemaHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.provider.Get(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to get schema")
		return
	}
	if err := WriteJSON(w, http.StatusOK, snapshot); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RefreshSchema handles POST /api/schema/refresh. On failure the previous
// snapshot stays in use.
func (h *SchemaHandler) RefreshSchema(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.provider.Refresh(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to refresh schema")
		return
	}
	h.logger.Info("Schema refreshed", zap.Int("tables", len(snapshot.Tables)))
	if err := WriteJSON(w, http.StatusOK, snapshot); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
