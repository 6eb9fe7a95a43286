package websocket

import (
	"encoding/json"

	"github.com/anahisv/whisperbox-be/internal/models"
)

// Message defines the structure for websocket events.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewMessageReceived builds the event pushed to a recipient when an
// anonymous message lands in their inbox.
func NewMessageReceived(m models.Message) []byte {
	data, _ := json.Marshal(Message{Action: "message_received", Payload: m})
	return data
}
