// Package hub implements the in-memory broadcast hub that fans each
// ingested line out to every live subscriber.
//
// Delivery is at-most-once and best-effort by contract: the live
// stream is a convenience view over the durable log, not the system of
// record. A subscriber whose buffer is full is dropped at the end of
// the fan-out pass and never blocks the publisher or its peers.
package hub

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/pulse/pkg/metrics"
)

// defaultBufferSize bounds each subscriber's pending-line buffer.
const defaultBufferSize = 256

// Subscriber is one ephemeral per-session delivery channel. It holds
// no persisted state and only sees lines published while registered.
type Subscriber struct {
	id string
	ch chan string
}

// ID returns the subscriber's unique identity.
func (s *Subscriber) ID() string {
	return s.id
}

// C returns the receive side of the subscriber's line buffer. The
// channel is closed when the hub shuts down.
func (s *Subscriber) C() <-chan string {
	return s.ch
}

// Hub maintains the current set of subscribers. All set mutations and
// publish passes share one mutex, so no fan-out ever iterates a
// half-updated set.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]*Subscriber
	buffer int
	closed bool
}

// New creates a Hub with configuration options.
func New(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]*Subscriber),
		buffer: defaultBufferSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Register creates a new subscriber and adds it to the set. The caller
// owns it for the session lifetime and must Unregister it on every
// exit path. After Close the returned subscriber's channel is already
// closed so sessions terminate immediately.
func (h *Hub) Register(ctx context.Context) *Subscriber {
	sub := &Subscriber{
		id: uuid.NewString(),
		ch: make(chan string, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub.id] = sub

	metrics.RecordStreamSession()
	metrics.UpdateSubscriberCount(len(h.subs))
	return sub
}

// Unregister removes a subscriber from the set. Removing one twice, or
// one that was never added, is a no-op.
func (h *Hub) Unregister(ctx context.Context, sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, sub.id)
	metrics.UpdateSubscriberCount(len(h.subs))
}

// Publish enqueues line into every subscriber's buffer without ever
// blocking. A subscriber that cannot accept the line is marked dead
// and removed at the end of the pass. Returns the delivery count.
func (h *Hub) Publish(ctx context.Context, line string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0
	}

	var dead []string
	delivered := 0
	for id, sub := range h.subs {
		select {
		case sub.ch <- line:
			delivered++
		default:
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		delete(h.subs, id)
		metrics.RecordBroadcastDropped()
	}
	if len(dead) > 0 {
		metrics.UpdateSubscriberCount(len(h.subs))
	}

	metrics.RecordBroadcastDelivery(delivered)
	return delivered
}

// Count returns the current number of registered subscribers.
func (h *Hub) Count(ctx context.Context) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close shuts the hub down: every subscriber channel is closed so live
// sessions drain and exit, and later publishes become no-ops.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	h.closed = true
	metrics.UpdateSubscriberCount(0)
	return nil
}
