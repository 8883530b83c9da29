package handlers

import (
	"net/http"

	"github.com/a-h/respond"

	"concierge-backend/internal/middleware"
	"concierge-backend/internal/models"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	respond.WithJSON(w, data, status)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: apiError(code, message, r),
	}
}

func apiError(code, message string, r *http.Request) models.APIError {
	return models.APIError{
		Code:      code,
		Message:   message,
		RequestID: r.Header.Get(middleware.RequestIDHeader),
	}
}
