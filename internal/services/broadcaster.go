package services

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Event types pushed to connected clients.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
	EventCuadreUpdated      = "cuadre.updated"
	EventLookupCreated      = "lookup.created"
	EventBoletaCreated      = "boleta.created"
)

// Event is the JSON envelope sent over the broadcast stream.
type Event struct {
	Type string `json:"type" validate:"required"`
	Data any    `json:"data"`
}

// Subscription receives encoded events until it is closed.
type Subscription struct {
	C      <-chan []byte
	ch     chan []byte
	once   sync.Once
	parent *Broadcaster
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.parent.remove(s)
	})
}

// Broadcaster fans events out to every live subscription. A subscriber whose
// buffer is full misses the event instead of blocking the publisher.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*Subscription]struct{}
	buffer  int
	log     zerolog.Logger
}

// NewBroadcaster creates a broadcaster with a per-subscriber buffer.
func NewBroadcaster(buffer int, log zerolog.Logger) *Broadcaster {
	if buffer < 1 {
		buffer = 16
	}
	return &Broadcaster{
		clients: make(map[*Subscription]struct{}),
		buffer:  buffer,
		log:     log.With().Str("component", "broadcast").Logger(),
	}
}

// Subscribe registers a new subscription.
func (b *Broadcaster) Subscribe() *Subscription {
	ch := make(chan []byte, b.buffer)
	sub := &Subscription{C: ch, ch: ch, parent: b}

	b.mu.Lock()
	b.clients[sub] = struct{}{}
	count := len(b.clients)
	b.mu.Unlock()

	b.log.Debug().Int("clients", count).Msg("client connected")
	return sub
}

func (b *Broadcaster) remove(sub *Subscription) {
	b.mu.Lock()
	if _, ok := b.clients[sub]; ok {
		delete(b.clients, sub)
		close(sub.ch)
	}
	count := len(b.clients)
	b.mu.Unlock()

	b.log.Debug().Int("clients", count).Msg("client disconnected")
}

// Publish encodes an event and delivers it to every subscriber. It returns
// the number of subscribers that received it.
func (b *Broadcaster) Publish(eventType string, data any) int {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		b.log.Error().Err(err).Str("type", eventType).Msg("failed to encode event")
		return 0
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for sub := range b.clients {
		select {
		case sub.ch <- payload:
			delivered++
		default:
			b.log.Warn().Str("type", eventType).Msg("subscriber buffer full, event dropped")
		}
	}
	return delivered
}

// Count returns the number of live subscriptions.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every subscriber.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.clients {
		delete(b.clients, sub)
		close(sub.ch)
	}
}
