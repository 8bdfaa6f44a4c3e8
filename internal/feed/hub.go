package feed

import (
	"sync"

	"go.uber.org/zap"

	"chat-store/internal/models"
)

const subscriptionBuffer = 64

// Hub fans room events out to live subscriptions. Each room is independent;
// a subscription sees only events published after it was opened.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[*Subscription]struct{}
	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscription is a live feed for one room. Events arrive on Events() until
// Cancel is called; Cancel is synchronous, no event is delivered after it
// returns.
type Subscription struct {
	hub    *Hub
	roomID string
	ch     chan models.RoomEvent
	closed bool
}

// Events returns the channel carrying room events in publish order.
func (s *Subscription) Events() <-chan models.RoomEvent {
	return s.ch
}

// Cancel stops delivery and releases the subscription. Safe to call twice.
func (s *Subscription) Cancel() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if subs, ok := s.hub.rooms[s.roomID]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.rooms, s.roomID)
		}
	}
	close(s.ch)
}

// Subscribe registers a live feed on a room. Concurrent subscriptions on the
// same room are independent.
func (h *Hub) Subscribe(roomID string) *Subscription {
	sub := &Subscription{
		hub:    h,
		roomID: roomID,
		ch:     make(chan models.RoomEvent, subscriptionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Subscription]struct{})
	}
	h.rooms[roomID][sub] = struct{}{}
	return sub
}

// Publish delivers an event to every subscription on the room. Delivery is
// non-blocking: a subscriber that stopped draining its channel loses the
// event rather than stalling the publisher. Events carry created_at and seq,
// so consumers that fell behind can re-read the log in order.
func (h *Hub) Publish(event models.RoomEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.rooms[event.RoomID] {
		select {
		case sub.ch <- event:
		default:
			h.logger.Warn("subscriber buffer full, dropping event",
				zap.String("room_id", event.RoomID),
				zap.String("type", event.Type))
		}
	}
}

// SubscriberCount reports active subscriptions for a room.
func (h *Hub) SubscriberCount(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}
