// Package realtime keeps the registry of live websocket connections and
// pushes events to the rooms they joined. A room is keyed by user id and may
// hold several connections (one per device). Nothing here is persisted:
// delivery is at-most-once and a client that is not connected simply misses
// the push.
package realtime

import (
	"errors"
	"sync"

	"github.com/goccy/go-json"

	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/metrics"
)

// Event names used on the wire.
const (
	EventJoin         = "join"
	EventNotification = "notification"
	EventPing         = "ping"
	EventPong         = "pong"
	EventError        = "error"
)

// Message is the JSON frame exchanged with clients.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrUnknownConnection is returned by Join for an unregistered connection id.
var ErrUnknownConnection = errors.New("unknown connection")

// ErrHubClosed is returned by Register after Close.
var ErrHubClosed = errors.New("hub closed")

// Hub is the connection registry. It is safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[uint64]map[string]*Client
	joined  map[string]map[uint64]struct{} // connection id -> rooms
	closed  bool
}

// NewHub returns an empty registry.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[uint64]map[string]*Client),
		joined:  make(map[string]map[uint64]struct{}),
	}
}

// Register adds a connection that has not joined any room yet.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.clients[c.id] = c
	metrics.WSConnectionsActive.Inc()
	logging.Debug().Str("conn", c.id).Int("total_clients", len(h.clients)).Msg("websocket client connected")
	return nil
}

// Join puts connection connID into the room of userID. Joining the same
// room twice is a no-op.
func (h *Hub) Join(connID string, userID uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if !ok {
		return ErrUnknownConnection
	}
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[userID] = room
		metrics.WSRoomsActive.Inc()
	}
	room[connID] = c
	if h.joined[connID] == nil {
		h.joined[connID] = make(map[uint64]struct{})
	}
	h.joined[connID][userID] = struct{}{}
	return nil
}

// Leave forgets connID and every room membership it had, then closes its
// send queue. Unknown ids are ignored.
func (h *Hub) Leave(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(connID)
}

func (h *Hub) removeLocked(connID string) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	for userID := range h.joined[connID] {
		room := h.rooms[userID]
		delete(room, connID)
		if len(room) == 0 {
			delete(h.rooms, userID)
			metrics.WSRoomsActive.Dec()
		}
	}
	delete(h.joined, connID)
	delete(h.clients, connID)
	close(c.send)
	metrics.WSConnectionsActive.Dec()
	logging.Debug().Str("conn", connID).Int("total_clients", len(h.clients)).Msg("websocket client disconnected")
}

// Publish delivers event to every connection in the room of userID and
// returns how many frames were queued. An empty room is not an error.
// Connections whose send queue is full are evicted.
func (h *Hub) Publish(userID uint64, event string, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Str("event", event).Msg("encode websocket payload")
		return 0
	}
	frame, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		logging.Error().Err(err).Str("event", event).Msg("encode websocket frame")
		return 0
	}

	var (
		queued int
		slow   []string
	)
	h.mu.RLock()
	for id, c := range h.rooms[userID] {
		select {
		case c.send <- frame:
			queued++
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	metrics.WSMessagesSent.WithLabelValues(event, "queued").Add(float64(queued))
	if len(slow) > 0 {
		metrics.WSMessagesSent.WithLabelValues(event, "dropped").Add(float64(len(slow)))
		h.mu.Lock()
		for _, id := range slow {
			logging.Warn().Str("conn", id).Uint64("user_id", userID).Msg("websocket send buffer full, evicting client")
			h.removeLocked(id)
		}
		h.mu.Unlock()
	}
	return queued
}

// RoomSize returns the number of connections joined to userID's room.
func (h *Hub) RoomSize(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects later registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id := range h.clients {
		h.removeLocked(id)
	}
}
