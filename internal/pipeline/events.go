// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"sync"
	"time"

	"github.com/pdiddy/deepresearch/pkg/types"
)

// subscriberBuffer bounds each subscriber's event queue. A subscriber
// that stops draining loses newer events rather than stalling the run;
// delivered events always arrive in emission order.
const subscriberBuffer = 64

// Bus fans lifecycle events out to subscribers. Emission never blocks the
// orchestrator.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan types.Event
	next int
}

// NewBus returns an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan types.Event)}
}

// Subscribe registers a listener. The returned cancel function removes the
// subscription and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan types.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan types.Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Emit delivers an event to every subscriber, stamping the time if unset.
func (b *Bus) Emit(ev types.Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop rather than stall the pipeline.
		}
	}
}

// Close removes and closes every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
