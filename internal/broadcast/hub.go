// Package broadcast carries the ephemeral room-scoped draw/clear/undo
// events. Delivery is fire-and-forget: no backlog, no replay for late
// joiners.
package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Rushigaming001/askify-sketch/internal/game"
)

// Hub is the in-process fanout. Handlers run on the publisher's goroutine
// and must not block; the gateway hands frames off to buffered send queues.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[int]func(event string, payload []byte)
	next int
}

var _ game.Broadcaster = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]func(string, []byte))}
}

func (h *Hub) Publish(roomID, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	h.dispatch(roomID, event, data)
	return nil
}

func (h *Hub) dispatch(roomID, event string, data []byte) {
	h.mu.RLock()
	handlers := make([]func(string, []byte), 0, len(h.subs[roomID]))
	for _, fn := range h.subs[roomID] {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(event, data)
	}
}

func (h *Hub) Subscribe(roomID string, handler func(event string, payload []byte)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[int]func(string, []byte))
	}
	id := h.next
	h.next++
	h.subs[roomID][id] = handler

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[roomID], id)
		if len(h.subs[roomID]) == 0 {
			delete(h.subs, roomID)
		}
	}
}
