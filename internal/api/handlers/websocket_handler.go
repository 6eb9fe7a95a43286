package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/anahisv/whisperbox-be/internal/auth"
	ws "github.com/anahisv/whisperbox-be/internal/websocket"
)

// WebSocketHandler upgrades connections for live inbox notifications. The
// route sits behind the JWT middleware, so a connection is always bound to
// the signed-in user's id.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, false, "Not Authenticated.")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(conn, claims.UserID)
	h.hub.Register <- client

	go client.WritePump()
	go func() {
		client.ReadPump()
		h.hub.Unregister <- client
	}()
}
