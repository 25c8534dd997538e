package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// ProgressEvent is pushed to a user's open sockets when a scheduled
// meal crosses the completed boundary in either direction.
type ProgressEvent struct {
	Kind                 string  `json:"kind"` // meal.completed | meal.uncompleted
	ScheduledMealID      uint    `json:"scheduled_meal_id"`
	Date                 string  `json:"date"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type WSClient struct {
	UserID uint
	Conn   *websocket.Conn
}

type EventHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[uint]map[*WSClient]struct{})}
}

func (h *EventHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *EventHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

func (h *EventHub) Broadcast(userID uint, payload any) {
	msg, _ := json.Marshal(payload)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
