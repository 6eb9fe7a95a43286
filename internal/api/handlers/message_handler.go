package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/anahisv/whisperbox-be/internal/auth"
	"github.com/anahisv/whisperbox-be/internal/services"
	ws "github.com/anahisv/whisperbox-be/internal/websocket"
)

// MessageHandler handles HTTP requests for the anonymous inbox.
type MessageHandler struct {
	service services.MessageServiceProvider
	hub     *ws.Hub
}

// NewMessageHandler creates a new MessageHandler. The hub may be nil; push
// notifications are then skipped.
func NewMessageHandler(service services.MessageServiceProvider, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{service: service, hub: hub}
}

// SendPayload defines the structure for anonymous send requests.
type SendPayload struct {
	Username string `json:"username" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// Send appends an anonymous message to the named user's inbox. No session
// required; the sender stays anonymous.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var payload SendPayload
	if err := decodeValid(r, &payload); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	message, err := h.service.SendMessage(payload.Username, payload.Content)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUserNotFound):
		respondMessage(w, http.StatusNotFound, false, "User not found")
		return
	case errors.Is(err, services.ErrNotAcceptingMessages):
		respondMessage(w, http.StatusForbidden, false, "User is not accepting messages")
		return
	default:
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to send message")
		respondMessage(w, http.StatusInternalServerError, false, "Error sending the message")
		return
	}

	if h.hub != nil {
		h.hub.NotifyUser(message.UserID, ws.NewMessageReceived(message))
	}

	respondMessage(w, http.StatusCreated, true, "Message sent successfully")
}

// List returns the signed-in user's messages, newest first. limit/offset
// query parameters paginate; without them the full inbox is returned.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, false, "Not Authenticated.")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	messages, err := h.service.ListMessages(claims.UserID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list messages")
		respondMessage(w, http.StatusInternalServerError, false, "Error getting user messages")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": messages,
	})
}

// Delete removes one of the signed-in user's messages. A second delete of
// the same id, or an id under another owner, reports not found and changes
// nothing.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, false, "Not Authenticated.")
		return
	}

	messageID := chi.URLParam(r, "messageId")

	err := h.service.DeleteMessage(claims.UserID, messageID)
	switch {
	case err == nil:
		respondMessage(w, http.StatusOK, true, "Message deleted")
	case errors.Is(err, services.ErrMessageNotFound):
		respondMessage(w, http.StatusNotFound, false, "Message not found")
	default:
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to delete message")
		respondMessage(w, http.StatusInternalServerError, false, "Error deleting the message")
	}
}
