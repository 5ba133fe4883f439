package realtime

import (
	"sync"
)

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active live sessions keyed by user email. Closing a
// user's clients (sign-out) tears down every live subscription they hold.
type Hub struct {
	mu             sync.RWMutex
	emailToClients map[string]map[Client]struct{}
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = &Hub{
			emailToClients: make(map[string]map[Client]struct{}),
		}
	})
	return hubInstance
}

// Register adds a client under a user email.
func (h *Hub) Register(email string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.emailToClients[email]; !ok {
		h.emailToClients[email] = make(map[Client]struct{})
	}
	h.emailToClients[email][client] = struct{}{}
}

// Unregister removes a client; if the user has no more clients, cleans up the map.
func (h *Hub) Unregister(email string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.emailToClients[email]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.emailToClients, email)
		}
	}
}

// Broadcast sends a message to all clients of a user, so every tab a
// user has open receives the same snapshots. Returns whether at least
// one client accepted the message; failed clients are cleaned up by
// their own connection handlers.
func (h *Hub) Broadcast(email string, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := false
	for c := range h.emailToClients[email] {
		if c.Send(message) {
			delivered = true
		}
	}
	return delivered
}

// CloseUser closes every client of a user. Each close unwinds that
// client's session, releasing its live subscriptions.
func (h *Hub) CloseUser(email string) {
	h.mu.Lock()
	clients := h.emailToClients[email]
	delete(h.emailToClients, email)
	h.mu.Unlock()

	for c := range clients {
		c.Close()
	}
}
