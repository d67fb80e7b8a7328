// Package handler translates HTTP requests into service calls and service
// errors into status codes; no business rules live here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rolo-app/rolo/internal/http/response"
	"github.com/rolo-app/rolo/internal/service"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message, map[string]any{"field": validationErr.Field})
	case errors.Is(err, service.ErrDuplicateUsername):
		response.Error(w, r, http.StatusBadRequest, "DUPLICATE_USERNAME", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "not found", nil)
	default:
		slog.ErrorContext(r.Context(), "unhandled service error", "error", err, "path", r.URL.Path)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
