// Package hub fans transaction update events out to the WebSocket
// subscribers of one server instance. Membership is an explicit registry
// with a single mutation point; publishing iterates a snapshot so no lock is
// held while sending.
package hub

import (
	"sync"
	"time"

	"payments-service/internal/core/domain/entity"
)

// Event is the wire shape pushed to subscribers.
type Event struct {
	Name string          `json:"event"`
	Data TransactionData `json:"data"`
}

type TransactionData struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransactionUpdated builds the broadcast event for a state change.
func TransactionUpdated(tx *entity.Transaction) Event {
	return Event{
		Name: "transaction.updated",
		Data: TransactionData{
			ID:        tx.ID,
			Kind:      string(tx.Kind),
			Amount:    tx.Amount.StringFixed(2),
			Status:    string(tx.Status),
			CreatedAt: tx.CreatedAt,
			UpdatedAt: tx.UpdatedAt,
		},
	}
}

type Subscriber struct {
	ch   chan Event
	done chan struct{}
}

// Events is the subscriber's receive stream. The channel stays open after
// Unsubscribe; consumers select on Done to stop.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Done is closed when the subscriber is detached from the hub.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

func New() *Hub {
	return &Hub{subscribers: make(map[*Subscriber]struct{})}
}

// Subscribe attaches a new subscriber with the given buffer. Events
// published before this call are never delivered; there is no replay.
func (h *Hub) Subscribe(buffer int) *Subscriber {
	s := &Subscriber{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[s]
	delete(h.subscribers, s)
	h.mu.Unlock()
	if ok {
		close(s.done)
	}
}

// Publish delivers the event to every currently attached subscriber.
// Delivery is best-effort: a subscriber whose buffer is full misses the
// event rather than blocking the publisher.
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	snapshot := make([]*Subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		snapshot = append(snapshot, s)
	}
	h.mu.Unlock()

	for _, s := range snapshot {
		select {
		case s.ch <- evt:
		default:
		}
	}
}

// Len reports the current subscriber count.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
