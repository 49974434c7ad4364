// Package eventbus fans lifecycle events out to in-process subscribers.
package eventbus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/labelguild/internal/apiv1"
)

type subscriber struct {
	ch       chan *apiv1.Event
	done     chan struct{}
	once     sync.Once
	lossless bool
}

type SubscribeOption func(*subscriber)

// Lossless makes Publish wait for room in the subscriber's buffer instead of
// dropping. Consumers that keep records of every event, such as the audit
// log, subscribe this way.
func Lossless() SubscribeOption {
	return func(s *subscriber) { s.lossless = true }
}

type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[string]*subscriber),
	}
}

func (b *Bus) Subscribe(bufSize int, opts ...SubscribeOption) (string, <-chan *apiv1.Event) {
	id := ulid.Make().String()
	sub := &subscriber{
		ch:   make(chan *apiv1.Event, bufSize),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(sub)
	}
	b.mu.Lock()
	b.subscribers[id] = sub
	b.mu.Unlock()
	return id, sub.ch
}

// Unsubscribe closes the subscriber's channel after the events already
// buffered. A Publish blocked on a lossless subscriber is released first.
func (b *Bus) Unsubscribe(id string) {
	b.mu.RLock()
	sub, ok := b.subscribers[id]
	b.mu.RUnlock()
	if !ok {
		return
	}
	sub.once.Do(func() { close(sub.done) })

	b.mu.Lock()
	if _, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub.ch)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(event *apiv1.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, sub := range b.subscribers {
		if sub.lossless {
			select {
			case sub.ch <- event:
			case <-sub.done:
			}
			continue
		}
		select {
		case sub.ch <- event:
		default:
			slog.Warn("event dropped for slow subscriber", "subscriber_id", id, "event_type", event.Type, "task_id", event.ResourceID)
		}
	}
}

func (b *Bus) PublishNew(eventType apiv1.EventType, resourceID string, payload string, metadata map[string]string) *apiv1.Event {
	event := &apiv1.Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		ResourceID: resourceID,
		Payload:    payload,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
	b.Publish(event)
	return event
}
