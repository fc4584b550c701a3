package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"impostor/internal/app"
)

// Hub tracks live connections and the room each one listens to.
// It delivers room events as the session gateway's app.Notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]struct{} // room id -> connection ids
	logger  *zap.SugaredLogger
}

var _ app.Notifier = (*Hub)(nil)

// NewHub creates an empty hub
func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]struct{}),
		logger:  logger.Named("hub"),
	}
}

// Register adds a connection
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID()] = c
}

// Unregister removes a connection and its subscription
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(connID)
	delete(h.clients, connID)
}

// Subscribe makes connID receive the broadcasts of roomID, replacing any
// previous subscription.
func (h *Hub) Subscribe(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	h.unsubscribeLocked(connID)

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[roomID] = members
	}
	members[connID] = struct{}{}
	c.setRoom(roomID)
}

// Unsubscribe stops broadcasts to connID
func (h *Hub) Unsubscribe(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(connID)
}

func (h *Hub) unsubscribeLocked(connID string) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	roomID := c.Room()
	if roomID == "" {
		return
	}
	if members, ok := h.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	c.setRoom("")
}

// Notify implements app.Notifier. A targeted event reaches its recipient
// only while the recipient listens to the event's room.
func (h *Hub) Notify(events ...app.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, event := range events {
		data, err := json.Marshal(NewServerMessage(MessageType(event.Type), event.Payload))
		if err != nil {
			h.logger.Errorw("failed to encode event", "type", event.Type, "error", err)
			continue
		}

		members := h.rooms[event.RoomID]
		if event.Recipient != "" {
			if _, ok := members[event.Recipient]; ok {
				h.clients[event.Recipient].sendBytes(data)
			}
			continue
		}
		for connID := range members {
			h.clients[connID].sendBytes(data)
		}
	}
}

// ConnectionCount returns the number of live connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes every connection
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.Close()
	}
}
