// internal/app/system/realtime/hub.go
//
// Package realtime fans CRUD-change events out to connected WebSocket
// clients. It offers no delivery guarantee beyond the transport's
// per-connection ordering: a broadcast to an empty room is a no-op, a
// slow client has events dropped, and a briefly disconnected client is
// expected to re-fetch state after reconnecting.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub tracks connections and room subscriptions. Safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Conn]struct{}
	// latest maps a user ID to their most recently registered connection.
	// Actor-echo suppression is best effort: with multiple connections per
	// user, only the latest one is excluded from a broadcast.
	latest map[string]*Conn
	log    *zap.Logger
}

// NewHub constructs an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Conn]struct{}),
		latest: make(map[string]*Conn),
		log:    logger,
	}
}

// Register adds a connection and joins it to its personal user room.
func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.userID != "" {
		h.latest[c.userID] = c
		h.joinLocked(c, UserRoom(c.userID))
	}
	h.log.Debug("socket registered",
		zap.String("conn_id", c.id),
		zap.String("user_id", c.userID))
}

// Unregister removes a connection from every room it joined.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	if c.userID != "" && h.latest[c.userID] == c {
		delete(h.latest, c.userID)
	}
	c.closeSend()
	h.log.Debug("socket unregistered", zap.String("conn_id", c.id))
}

// Join subscribes a connection to a room.
func (h *Hub) Join(c *Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(c, room)
}

// Leave unsubscribes a connection from a room.
func (h *Hub) Leave(c *Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) joinLocked(c *Conn, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Conn]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) leaveLocked(c *Conn, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// Publish broadcasts an event to every connection in a room.
func (h *Hub) Publish(room string, ev Event) {
	h.PublishExcept(room, ev, "")
}

// PublishExcept broadcasts to a room, skipping the acting user's latest
// connection so actors do not receive their own echo.
func (h *Hub) PublishExcept(room string, ev Event, actorUserID string) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("event marshal failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	members := h.rooms[room]
	var skip *Conn
	if actorUserID != "" {
		skip = h.latest[actorUserID]
	}
	targets := make([]*Conn, 0, len(members))
	for c := range members {
		if c == skip {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(data) {
			// Slow consumer: drop, never queue or retry.
			h.log.Warn("dropping event for slow socket",
				zap.String("conn_id", c.id),
				zap.String("type", ev.Type))
		}
	}
}

// NotifyUser sends an event to a user's personal room. A no-op when the
// user has no connected sockets.
func (h *Hub) NotifyUser(userID string, ev Event) {
	h.Publish(UserRoom(userID), ev)
}

// RoomSize returns the number of connections in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
