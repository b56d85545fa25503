// Package broadcast fans order change events out to live subscribers and
// to optional sinks. Delivery is best-effort: a subscriber whose buffer is
// full misses the event.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated         EventType = "created"
	EventCancelled       EventType = "cancelled"
	EventStatusUpdated   EventType = "status_updated"
	EventReturnRequested EventType = "return_requested"
	EventBookingUpdated  EventType = "booking_updated"
)

type Event struct {
	Type    EventType  `json:"type"`
	OrderID uuid.UUID  `json:"order_id"`
	UserID  *uuid.UUID `json:"user_id,omitempty"`
	Status  string     `json:"status"`
	At      time.Time  `json:"at"`
}

// Sink receives every event off the publishing path.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

type Publisher interface {
	Publish(ev Event)
}

const (
	defaultSubscriberBuffer = 16
	defaultSinkBuffer       = 256
)

type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool

	sinks  []Sink
	sinkCh chan Event
	done   chan struct{}
	log    *slog.Logger
}

type Subscription struct {
	hub  *Hub
	ch   chan Event
	once sync.Once
}

func NewHub(log *slog.Logger, sinks ...Sink) *Hub {
	h := &Hub{
		subs:   make(map[*Subscription]struct{}),
		sinks:  sinks,
		sinkCh: make(chan Event, defaultSinkBuffer),
		done:   make(chan struct{}),
		log:    log,
	}
	if log == nil {
		h.log = slog.Default()
	}
	go h.forward()
	return h
}

func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{hub: h, ch: make(chan Event, defaultSubscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	for s := range h.subs {
		select {
		case s.ch <- ev:
		default:
			h.log.Debug("broadcast_dropped", "order_id", ev.OrderID, "type", ev.Type)
		}
	}

	if len(h.sinks) > 0 {
		select {
		case h.sinkCh <- ev:
		default:
			h.log.Warn("broadcast_sink_dropped", "order_id", ev.OrderID, "type", ev.Type)
		}
	}
}

// Close ends every subscription and waits for queued sink deliveries.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
	close(h.sinkCh)
	h.mu.Unlock()

	<-h.done
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) forward() {
	defer close(h.done)
	for ev := range h.sinkCh {
		for _, s := range h.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Deliver(ctx, ev); err != nil {
				h.log.Warn("broadcast_sink_error", "order_id", ev.OrderID, "type", ev.Type, "error", err)
			}
			cancel()
		}
	}
}

// C is closed when the subscription ends.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[s]; ok {
			delete(h.subs, s)
			close(s.ch)
		}
	})
}
