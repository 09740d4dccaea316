package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
)

// handleError maps service errors to HTTP responses. Callers always receive
// a typed outcome: validation, not-found, and precondition failures render
// distinct codes so the UI can show distinct messages.
func handleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := mapErrorCodeToHTTPStatus(appErr.Code)
		if status >= http.StatusInternalServerError {
			logger.Error("internal error", slog.String("error", err.Error()))
		}
		respondError(w, status, appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, models.ErrPrecondition):
		respondError(w, http.StatusConflict, "PRECONDITION", err.Error())

	case errors.Is(err, models.ErrValidation):
		respondError(w, http.StatusBadRequest, "VALIDATION", err.Error())

	default:
		// Log internal errors but don't expose details to the client
		logger.Error("internal server error",
			slog.String("error", err.Error()),
		)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case "VALIDATION":
		return http.StatusBadRequest
	case "NOT_FOUND":
		return http.StatusNotFound
	case "PRECONDITION":
		return http.StatusConflict
	case "GATEWAY", "STORAGE":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
