// Package events fans state-change notifications out to live observers.
//
// Delivery is best-effort and at-most-once: there is no replay buffer, so an
// observer only sees events published while it is subscribed.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types published by the engine.
const (
	TaskCreated       = "task_created"
	TaskUpdated       = "task_updated"
	TaskDeleted       = "task_deleted"
	TasksReordered    = "tasks_reordered"
	SprintStarted     = "sprint_started"
	SprintStopped     = "sprint_stopped"
	KaizenLogCreated  = "kaizen_log_created"
	KaizenLogDeleted  = "kaizen_log_deleted"
	DailyPlanCreated  = "daily_plan_created"
	DistractionLogged = "distraction_logged"

	// Connected is written once to every new stream, never published.
	Connected = "connected"
)

const defaultSubscriberCapacity = 64

// Event is a single notification as seen by observers.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is satisfied by anything that accepts engine notifications.
type Publisher interface {
	Publish(eventType string, data any)
}

// Option customizes Bus construction.
type Option func(*Bus)

// WithSubscriberCapacity overrides the buffered channel size per subscriber.
func WithSubscriberCapacity(capacity int) Option {
	return func(b *Bus) {
		if capacity > 0 {
			b.capacity = capacity
		}
	}
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// Logger receives drop diagnostics.
type Logger interface {
	Printf(format string, args ...any)
}

// WithLogger injects a logger for drop messages.
func WithLogger(logger Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// Bus is an in-memory registry of observer channels.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	capacity    int
	now         func() time.Time
	logger      Logger
}

// NewBus constructs a bus with sane defaults.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscribers: map[*Subscription]struct{}{},
		capacity:    defaultSubscriberCapacity,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Subscribe registers a new observer.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		ID: uuid.NewString(),
		ch: make(chan Event, b.capacity),
	}
	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes the observer and closes its channel. It is idempotent.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
	sub.close()
}

// Publish delivers the event to every current observer without blocking.
// An observer that cannot take the event is dropped.
func (b *Bus) Publish(eventType string, data any) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Data:      data,
		Timestamp: b.now().UTC(),
	}

	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		if !sub.deliver(event) {
			if b.logger != nil {
				b.logger.Printf("[SSE] dropping subscriber %s after failed %q delivery", sub.ID, eventType)
			}
			b.Unsubscribe(sub)
		}
	}
}

// Len reports the number of live observers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Subscription is one observer's handle.
type Subscription struct {
	ID string

	ch     chan Event
	mu     sync.Mutex
	closed bool
}

// Events is closed once the subscription is removed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) deliver(event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- event:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
