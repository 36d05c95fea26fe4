package notification

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Hub tracks connected websocket clients per user and pushes freshly created
// notifications to them. Delivery is best effort; the durable copy always
// lands in Mongo first.
type Hub struct {
	mu    sync.RWMutex
	conns map[string][]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string][]*websocket.Conn)}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], conn)
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.conns[userID]
	for i, c := range conns {
		if c == conn {
			h.conns[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Push serializes the notification and writes it to every open connection of
// the target user. Write errors are ignored; dead connections get cleaned up
// by the read loop.
func (h *Hub) Push(n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := h.conns[n.UserID]
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}
}
