package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/upload"
)

// UploadPlanner proposes where an uploaded CSV goes. *upload.Planner satisfies it.
type UploadPlanner interface {
	Analyze(ctx context.Context, filename string) (*upload.Plan, error)
}

// UploadLoader loads a confirmed plan. *upload.Loader satisfies it.
type UploadLoader interface {
	Execute(ctx context.Context, req upload.Request) (*upload.Outcome, error)
}

// ExecuteUploadRequest is the confirmed plan sent back by the client.
type ExecuteUploadRequest struct {
	Filename       string             `json:"filename"`
	SuggestedTable string             `json:"suggested_table"`
	ColumnMapping  map[string]*string `json:"column_mapping"`
}

// UploadHandler handles the two-phase CSV upload.
type UploadHandler struct {
	store   *upload.Store
	planner UploadPlanner
	loader  UploadLoader
	logger  *zap.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(store *upload.Store, planner UploadPlanner, loader UploadLoader, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{store: store, planner: planner, loader: loader, logger: logger}
}

// RegisterRoutes registers the upload routes.
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/analyze-csv", h.AnalyzeCSV)
	r.Post("/api/execute-upload", h.ExecuteUpload)
}

// AnalyzeCSV handles POST /api/analyze-csv (multipart field "file").
// The file is kept on the server until it is uploaded.
func (h *UploadHandler) AnalyzeCSV(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_file", "No file part in the request."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	defer file.Close()

	name, err := h.store.Save(header.Filename, file)
	if err != nil {
		writeError(w, h.logger, err, "Failed to save the uploaded file.")
		return
	}

	plan, err := h.planner.Analyze(r.Context(), name)
	if err != nil {
		_ = h.store.Remove(name)
		writeError(w, h.logger, err, "Failed to get a valid upload plan.")
		return
	}

	if err := WriteJSON(w, http.StatusOK, plan); err != nil {
		h.logger.Error("Failed to write upload plan", zap.Error(err))
	}
}

// ExecuteUpload handles POST /api/execute-upload.
func (h *UploadHandler) ExecuteUpload(w http.ResponseWriter, r *http.Request) {
	var req ExecuteUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" || req.SuggestedTable == "" || len(req.ColumnMapping) == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_data", "Missing data for upload execution."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	mapping := make(map[string]string, len(req.ColumnMapping))
	for src, target := range req.ColumnMapping {
		if target != nil {
			mapping[src] = *target
		}
	}

	out, err := h.loader.Execute(r.Context(), upload.Request{
		Filename: req.Filename,
		Table:    req.SuggestedTable,
		Mapping:  mapping,
	})
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		msg := fmt.Sprintf("File %s not found on server.", req.Filename)
		if err := ErrorResponse(w, http.StatusNotFound, "file_not_found", msg); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	case err != nil:
		writeError(w, h.logger, err, "An unexpected error occurred during upload.")
		return
	}

	if err := WriteJSON(w, http.StatusOK, out); err != nil {
		h.logger.Error("Failed to write upload response", zap.Error(err))
	}
}
