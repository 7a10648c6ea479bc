// internal/interfaces/websocket/registry.go
package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/domain/chat"
)

// Registry maps each user to their single live connection
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{clients: make(map[uuid.UUID]*Client)}
}

var _ chat.Notifier = (*Registry)(nil)

// Register makes c the user's live connection, replacing any previous one
func (r *Registry) Register(id uuid.UUID, c *Client) {
	r.mu.Lock()
	r.clients[id] = c
	r.mu.Unlock()
}

// Unregister removes the entry only if it still points at c, so a stale
// connection closing late cannot evict its replacement.
func (r *Registry) Unregister(id uuid.UUID, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.clients[id]; ok && cur == c {
		delete(r.clients, id)
		return true
	}
	return false
}

// Get returns the user's live connection
func (r *Registry) Get(id uuid.UUID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// SendIfPresent queues payload for the user. It reports false when the user
// is offline or their buffer is full.
func (r *Registry) SendIfPresent(id uuid.UUID, payload []byte) bool {
	c, ok := r.Get(id)
	if !ok {
		return false
	}
	return c.enqueue(payload)
}

// SendToAdmins queues payload for every connected admin and returns how many accepted it
func (r *Registry) SendToAdmins(payload []byte) int {
	r.mu.RLock()
	admins := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		if c.isAdmin {
			admins = append(admins, c)
		}
	}
	r.mu.RUnlock()

	n := 0
	for _, c := range admins {
		if c.enqueue(payload) {
			n++
		}
	}
	return n
}

// Online lists connected users
func (r *Registry) Online() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}

// Len is the number of connected users
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAll tells every connection the server is going away
func (r *Registry) CloseAll() {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		c.shutdown()
	}
}
