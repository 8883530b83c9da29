package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"concierge-backend/internal/middleware"
	"concierge-backend/internal/models"
	"concierge-backend/internal/services"
)

const (
	maxBodyBytes    = 64 << 10
	maxMessageRunes = 4000
)

type conciergeService interface {
	Reply(ctx context.Context, message string, history []models.ChatMessage) (string, error)
	Model() string
}

type ChatHandler struct {
	concierge  conciergeService
	replyField string
	log        zerolog.Logger
}

func NewChatHandler(concierge conciergeService, replyField string, log zerolog.Logger) *ChatHandler {
	if replyField == "" {
		replyField = "reply"
	}
	return &ChatHandler{
		concierge:  concierge,
		replyField: replyField,
		log:        log,
	}
}

// Chat answers one visitor message. Failures still carry a fixed, visitor
// safe sentence in the reply field.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	log := h.log.With().Str("request_id", middleware.GetRequestID(r.Context())).Logger()

	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("invalid chat request body")
		h.writeFailure(w, r, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	message := req.Text()
	if message == "" {
		h.writeFailure(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Message is required")
		return
	}
	if utf8.RuneCountInString(message) > maxMessageRunes {
		h.writeFailure(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Message is too long")
		return
	}

	if h.concierge == nil {
		log.Error().Msg("chat service is not configured")
		h.writeFailure(w, r, http.StatusInternalServerError, "CONFIG_ERROR", "Chat service is not configured")
		return
	}

	reply, err := h.concierge.Reply(r.Context(), message, req.History)
	if err != nil {
		var upstream *services.UpstreamError
		switch {
		case errors.Is(err, services.ErrMissingCredential):
			log.Error().Err(err).Msg("chat service is not configured")
			h.writeFailure(w, r, http.StatusInternalServerError, "CONFIG_ERROR", "Chat service is not configured")
		case errors.As(err, &upstream):
			log.Error().Int("upstream_status", upstream.Status).Str("detail", upstream.Detail).Msg("Gemini API error")
			h.writeFailure(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Unable to reach chat service")
		default:
			log.Error().Err(err).Msg("chat request failed")
			h.writeFailure(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Chat service encountered an issue")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		h.replyField: reply,
		"model":      h.concierge.Model(),
	})
}

func (h *ChatHandler) writeFailure(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		h.replyField: services.ErrorReply,
		"error":      apiError(code, message, r),
	})
}

// MethodNotAllowed keeps 405s on the chat routes in the JSON error shape.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	writeJSON(w, http.StatusMethodNotAllowed, errorResp("METHOD_NOT_ALLOWED", "Method not allowed. Use POST.", r))
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
