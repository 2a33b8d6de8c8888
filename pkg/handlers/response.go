// Package handlers implements the HTTP API: chat, CSV upload, dashboard,
// schema and health endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/logging"
	"github.com/ekaya-inc/aria-engine/pkg/upload"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// classify maps a service error to an HTTP status and error code.
func classify(err error) (int, string) {
	var mappingErr *upload.MappingError
	switch {
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, apperrors.ErrUnsafeQuery):
		return http.StatusBadRequest, "unsafe_query"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, upload.ErrUnknownTable), errors.As(err, &mappingErr):
		return http.StatusUnprocessableEntity, "invalid_upload_plan"
	case llm.IsRateLimited(err):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, apperrors.ErrSchemaUnavailable):
		return http.StatusServiceUnavailable, "schema_unavailable"
	case errors.Is(err, apperrors.ErrUnsupported):
		return http.StatusNotImplemented, "unsupported"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError logs err and writes the matching error response. Server errors
// get fallback instead of the raw error text.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	status, code := classify(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, zap.String("error", logging.SanitizeError(err)))
		message = fallback
		if status == http.StatusServiceUnavailable {
			message = "The warehouse schema is unavailable. Please try again shortly."
		}
	}
	if status == http.StatusTooManyRequests {
		message = "The language model is rate limited. Please try again shortly."
	}
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
