package realtime

import (
	"context"
	"sync"
)

// EventKind distinguishes ordinary messages from gap markers.
type EventKind int

const (
	// KindMessage carries a published payload.
	KindMessage EventKind = iota
	// KindReset signals that messages may have been missed; subscribers
	// should rebuild their state instead of appending.
	KindReset
)

// Event is what a subscriber receives.
type Event struct {
	Kind    EventKind
	Payload []byte
}

// Bus is the abstraction over different fan-out backends. Every subscriber of
// a channel receives every message published to it after subscription, or a
// reset event when delivery could not be guaranteed.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan Event, error)
}

// SessionChannel names the bus channel carrying new attendance record ids for
// one session. Publishers and subscribers must agree on it.
func SessionChannel(sessionID string) string {
	return "attendance:" + sessionID
}

const subscriberBuffer = 16

// InMemory is a minimal channel-backed bus for dev/testing.
type InMemory struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan Event
}

// NewInMemory creates an in-memory bus.
func NewInMemory() *InMemory {
	return &InMemory{subs: make(map[string]map[int]chan Event)}
}

// Publish delivers the payload to every current subscriber of the channel.
// A subscriber whose buffer is full gets its pending events replaced by a
// single reset marker rather than losing the message silently.
func (b *InMemory) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[channel] {
		deliver(ch, Event{Kind: KindMessage, Payload: payload})
	}
	return nil
}

// Subscribe registers a subscriber; the returned channel closes when ctx ends.
func (b *InMemory) Subscribe(ctx context.Context, channel string) (<-chan Event, error) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]chan Event)
	}
	id := b.next
	b.next++
	b.subs[channel][id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[channel], id)
		if len(b.subs[channel]) == 0 {
			delete(b.subs, channel)
		}
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// deliver enqueues ev without blocking; on a full buffer it drains the buffer
// and enqueues a reset so the lag is visible to the subscriber.
func deliver(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	for {
		select {
		case <-ch:
		default:
			ch <- Event{Kind: KindReset}
			return
		}
	}
}
