package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHubDispatch(t *testing.T) {
	hub := NewHub(nil)

	events, cancel := hub.Subscribe()
	defer cancel()

	sent := Event{
		Type:     EventReviewLocked,
		ReviewID: uuid.New(),
		LeadID:   uuid.New(),
		ActorID:  uuid.New(),
		At:       time.Now(),
	}
	hub.dispatch(sent)

	select {
	case got := <-events:
		assert.Equal(t, sent.Type, got.Type)
		assert.Equal(t, sent.ReviewID, got.ReviewID)
	case <-time.After(time.Second):
		t.Fatal("expected event on subscriber channel")
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub(nil)

	events, cancel := hub.Subscribe()
	cancel()

	hub.dispatch(Event{Type: EventReviewUnlocked, ReviewID: uuid.New()})

	select {
	case event := <-events:
		t.Fatalf("unexpected event after cancel: %v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)

	// Subscriber that never reads; its buffer fills and overflow is dropped
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.dispatch(Event{Type: EventReviewLocked, ReviewID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on a slow subscriber")
	}
}
