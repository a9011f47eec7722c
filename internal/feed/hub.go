package feed

import (
	"context"
	"sync"

	"github.com/trogers1052/networth-tracker/internal/models"
)

// bufferSize is the number of pending notifications kept per subscriber
const bufferSize = 8

// Hub fans holding change events out to per-user subscribers.
// Delivery never blocks the publisher; a full subscriber misses the event.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan models.HoldingEvent
}

// NewHub creates an empty change feed
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan models.HoldingEvent)}
}

// Subscribe registers for the user's events. The returned cancel function unregisters
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(userID string) (<-chan models.HoldingEvent, func()) {
	ch := make(chan models.HoldingEvent, bufferSize)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan models.HoldingEvent)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers event to every subscriber of event.UserID
func (h *Hub) Publish(event models.HoldingEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishHoldingEvent lets the hub stand in for a broker publisher
func (h *Hub) PublishHoldingEvent(_ context.Context, event models.HoldingEvent) error {
	h.Publish(event)
	return nil
}

// Subscribers returns the number of live subscriptions for a user
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
