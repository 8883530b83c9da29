package middleware

import (
	"net/http"

	"github.com/a-h/respond"

	"concierge-backend/internal/models"
)

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	respond.WithJSON(w, models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(RequestIDHeader),
		},
	}, status)
}
