package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is a single websocket connection owned by a signed-in user.
type Client struct {
	conn *websocket.Conn

	// UserID is the owner the connection is subscribed to.
	UserID string

	// Send buffers outbound events.
	Send chan []byte
}

// NewClient creates a client for an upgraded connection.
func NewClient(conn *websocket.Conn, userID string) *Client {
	return &Client{
		conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 16),
	}
}

// ReadPump drains the connection until it closes. Inbox sockets are
// push-only; inbound frames are discarded, but reading is required to
// process control messages and detect disconnects.
func (c *Client) ReadPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("user_id", c.UserID).Msg("Websocket read error")
			}
			return
		}
	}
}

// WritePump forwards events from the Send channel to the connection and
// keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
