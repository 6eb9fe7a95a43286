package websocket

import "github.com/rs/zerolog/log"

type notification struct {
	userID  string
	payload []byte
}

// Hub maintains the set of connected inbox clients and pushes events to the
// owner they belong to. All membership changes and deliveries go through the
// run loop.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Pending deliveries, fanned out by the run loop.
	notify chan notification

	// A map of user IDs to the set of that user's open connections.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		notify:        make(chan notification, 64),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client)
			log.Info().Int("total_clients", len(h.clients)).Msg("Inbox client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Inbox client disconnected")
			}
		case n := <-h.notify:
			h.deliver(n)
		}
	}
}

// NotifyUser queues an event for every open connection belonging to a user.
// Events are best-effort: if the hub's queue is full the event is dropped,
// the inbox itself is always consistent on the next fetch.
func (h *Hub) NotifyUser(userID string, message []byte) {
	select {
	case h.notify <- notification{userID: userID, payload: message}:
	default:
		log.Debug().Str("user_id", userID).Msg("Notification queue full, dropping event")
	}
}

func (h *Hub) deliver(n notification) {
	for client := range h.subscriptions[n.userID] {
		select {
		case client.Send <- n.payload:
		default:
			// Slow connection: drop it rather than block the hub.
			delete(h.clients, client)
			close(client.Send)
			h.removeSubscription(client)
		}
	}
}

func (h *Hub) addSubscription(client *Client) {
	if h.subscriptions[client.UserID] == nil {
		h.subscriptions[client.UserID] = make(map[*Client]bool)
	}
	h.subscriptions[client.UserID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	if subs, ok := h.subscriptions[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.UserID)
		}
	}
}
