// internal/app/system/realtime/conn.go
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// sendBuffer bounds how many pending events a connection may hold before
// the hub starts dropping.
const sendBuffer = 32

// Conn is the hub's view of one WebSocket connection. The transport
// read/write pumps live in the socket feature; the hub only enqueues
// outbound payloads.
type Conn struct {
	id     string
	userID string // empty for anonymous dev-mode connections
	rooms  map[string]struct{}

	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewConn creates a connection record for the given user. The userID may
// be empty when anonymous sockets are allowed (dev mode only).
func NewConn(userID string) *Conn {
	return &Conn{
		id:     uuid.NewString(),
		userID: userID,
		rooms:  make(map[string]struct{}),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string { return c.id }

// UserID returns the authenticated user ID, or "" for anonymous.
func (c *Conn) UserID() string { return c.userID }

// Outbound is the queue of payloads the write pump must deliver.
func (c *Conn) Outbound() <-chan []byte { return c.send }

// Done is closed when the hub unregisters the connection.
func (c *Conn) Done() <-chan struct{} { return c.done }

// enqueue offers a payload without blocking. False means the connection
// is gone or its buffer is full.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Conn) closeSend() {
	c.once.Do(func() { close(c.done) })
}
