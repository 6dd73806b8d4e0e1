package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

type client struct {
	id     string
	userID int64
	conn   *websocket.Conn
	send   chan Event
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub keeps every live connection per owner. A user may hold several
// connections; events go to all of them.
type Hub struct {
	connections map[int64]map[string]*client
	mutex       sync.RWMutex
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		connections: make(map[int64]map[string]*client),
		log:         log,
	}
}

// Register adds conn for userID and starts its writer. The returned id is
// passed to Unregister.
func (h *Hub) Register(userID int64, conn *websocket.Conn) string {
	c := &client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
	}

	h.mutex.Lock()
	if h.connections[userID] == nil {
		h.connections[userID] = make(map[string]*client)
	}
	h.connections[userID][c.id] = c
	h.mutex.Unlock()

	go h.writeLoop(c)
	return c.id
}

func (h *Hub) Unregister(userID int64, clientID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns := h.connections[userID]
	c, exists := conns[clientID]
	if !exists {
		return
	}
	delete(conns, clientID)
	if len(conns) == 0 {
		delete(h.connections, userID)
	}
	c.close()
}

// Publish queues e for every connection of its owner. Connections whose
// buffer is full are dropped.
func (h *Hub) Publish(e Event) {
	h.mutex.RLock()
	var slow []*client
	for _, c := range h.connections[e.OwnerID] {
		select {
		case c.send <- e:
		default:
			slow = append(slow, c)
		}
	}
	h.mutex.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow websocket client", zap.Int64("user_id", c.userID), zap.String("client_id", c.id))
		h.Unregister(c.userID, c.id)
	}
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections[userID]) > 0
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, conns := range h.connections {
		for _, c := range conns {
			c.close()
		}
		delete(h.connections, userID)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for e := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(e); err != nil {
			h.log.Debug("websocket write failed", zap.Int64("user_id", c.userID), zap.Error(err))
			go h.Unregister(c.userID, c.id)
			// drain until Unregister closes the channel
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
