package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeError maps a service error onto the HTTP error taxonomy:
// validation 400, missing identity 401, insufficient role 403, missing
// record 404, store failure 500 (cause logged, not echoed), everything
// else 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var status int
	var code string

	switch {
	case apperrors.IsValidation(err):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrPersistence):
		logger.Error("Persistence failure", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "persistence_failure", "Storage failure"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	default:
		logger.Error("Request failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal error"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
