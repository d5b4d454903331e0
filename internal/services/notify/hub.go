package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// EventType identifies what happened to a review
type EventType string

const (
	EventReviewLocked   EventType = "review_locked"
	EventReviewUnlocked EventType = "review_unlocked"
	EventReviewResolved EventType = "review_resolved"
)

// Event is a best-effort push notification about the quality queue.
// Delivery is not guaranteed; clients keep polling as the correctness fallback.
type Event struct {
	Type      EventType `json:"type"`
	ReviewID  uuid.UUID `json:"review_id"`
	LeadID    uuid.UUID `json:"lead_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorName string    `json:"actor_name,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher publishes quality queue events
type Publisher interface {
	PublishQualityEvent(ctx context.Context, event Event)
}

const qualityChannel = "quality:events"

// Hub fans quality events out to connected SSE clients. Events are routed
// through Redis pub/sub so every server instance sees every event.
type Hub struct {
	rdb  *redis.Client
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub creates a new hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:  rdb,
		subs: make(map[chan Event]struct{}),
	}
}

// Run subscribes to the Redis channel and dispatches until ctx is done
func (h *Hub) Run(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, qualityChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Error unmarshaling quality event: %v", err)
				continue
			}
			h.dispatch(event)
		}
	}
}

// PublishQualityEvent publishes an event to all instances. Failures are
// logged and dropped; the poll interval covers missed events.
func (h *Hub) PublishQualityEvent(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling quality event: %v", err)
		return
	}
	if err := h.rdb.Publish(ctx, qualityChannel, payload).Err(); err != nil {
		log.Printf("Error publishing quality event: %v", err)
	}
}

// Subscribe registers a local listener. The returned cancel function must be
// called when the client disconnects.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}

	return ch, cancel
}

// dispatch delivers an event to local subscribers without blocking; a slow
// client loses events rather than stalling the hub
func (h *Hub) dispatch(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
