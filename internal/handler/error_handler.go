package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// handleError maps service errors to HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	// Field-level validation failures from aggregates and DTOs
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		respondFieldError(w, http.StatusBadRequest, models.CodeInvalidInput, validationErr.Error(), validationErr.Field)
		return
	}

	// Check for custom AppError
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := mapErrorCodeToHTTPStatus(appErr.Code)
		respondFieldError(w, status, appErr.Code, appErr.Message, appErr.Field)
		return
	}

	// Check for common errors
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, models.CodeNotFound, err.Error())

	case errors.Is(err, models.ErrConflict):
		respondError(w, http.StatusConflict, models.CodeConflict, err.Error())

	default:
		// Log internal errors but don't expose details to client
		logger.Error("internal server error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case models.CodeInvalidInput:
		return http.StatusBadRequest
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeConflict:
		return http.StatusConflict
	case models.CodeUnauthorized:
		return http.StatusUnauthorized
	case models.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
