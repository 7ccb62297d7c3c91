package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/inkwell-cms/inkwell/internal/domain"
	"github.com/inkwell-cms/inkwell/internal/metrics"
)

const subscriberBufferSize = 32

// Subscriber is one notification stream client's private delivery queue.
// The caller owns draining it; events arrive in publish order.
type Subscriber struct {
	id     uuid.UUID
	events chan domain.Event
}

// ID returns the subscriber's correlation ID, used in logs.
func (s *Subscriber) ID() uuid.UUID {
	return s.id
}

// Events is the receive side of the subscriber's queue. The channel is
// closed on unsubscribe, so a range loop over it terminates cleanly.
func (s *Subscriber) Events() <-chan domain.Event {
	return s.events
}

// Pool is the flat, non-topic-partitioned set of notification subscribers.
// One mutex guards the set; every enqueue is non-blocking, so a stalled
// consumer delays nobody and gets pruned on the publish that finds its
// queue full.
type Pool struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	closed      bool
}

func NewPool() *Pool {
	return &Pool{
		subscribers: make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new delivery queue and returns it. After Close the
// returned subscriber's channel is already closed, so its stream ends
// immediately.
func (p *Pool) Subscribe() *Subscriber {
	sub := &Subscriber{
		id:     uuid.New(),
		events: make(chan domain.Event, subscriberBufferSize),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		close(sub.events)
		return sub
	}

	p.subscribers[sub] = struct{}{}
	metrics.NotificationSubscribers.Set(float64(len(p.subscribers)))
	slog.Info("Notification subscriber added", "subscriber_id", sub.id.String(), "total_subscribers", len(p.subscribers))
	return sub
}

// Unsubscribe removes the queue from the pool and closes it. Idempotent.
func (p *Pool) Unsubscribe(sub *Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(sub)
	slog.Info("Notification subscriber removed", "subscriber_id", sub.id.String(), "total_subscribers", len(p.subscribers))
}

// removeLocked deletes and closes a subscriber. The map check makes removal
// idempotent; closing under the pool lock means Publish can never send on a
// closed channel.
func (p *Pool) removeLocked(sub *Subscriber) {
	if _, ok := p.subscribers[sub]; !ok {
		return
	}
	delete(p.subscribers, sub)
	close(sub.events)
	metrics.NotificationSubscribers.Set(float64(len(p.subscribers)))
}

// Publish enqueues the event into every registered queue. A queue that
// cannot accept it is removed as part of this call; delivery failures never
// propagate to the publisher.
func (p *Pool) Publish(event domain.Event) {
	metrics.NotificationsPublished.WithLabelValues(string(event.EventKind())).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.subscribers) == 0 {
		metrics.NotificationsNoRecipients.Inc()
		slog.Debug("Event published with no subscribers", "event", event.EventKind())
		return
	}

	var full []*Subscriber
	delivered := 0
	for sub := range p.subscribers {
		select {
		case sub.events <- event:
			delivered++
		default:
			full = append(full, sub)
		}
	}

	for _, sub := range full {
		slog.Warn("Dropping stalled notification subscriber", "subscriber_id", sub.id.String())
		metrics.NotificationsDropped.Inc()
		p.removeLocked(sub)
	}

	if delivered == 0 {
		metrics.NotificationsNoRecipients.Inc()
	}

	slog.Debug("Event published", "event", event.EventKind(), "delivered", delivered, "dropped", len(full))
}

// Len returns the number of live subscribers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subscribers)
}

// Close removes all subscribers and rejects future subscriptions. Called
// once during server shutdown.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	for sub := range p.subscribers {
		p.removeLocked(sub)
	}
	slog.Info("Notification pool closed")
}
