// Package capture implements the endpoint capture engine: the bounded event
// buffer, focus tracking, the monitoring lifecycle controller, and one
// EventSource per captured signal.
package capture

import (
	"sync"

	"github.com/opspulse/workmon/internal/domain"
)

// BoundedEventBuffer is a fixed-capacity FIFO shared between producer
// callbacks and the drain loop. Push never blocks and never fails: beyond
// capacity the single oldest entry is evicted. DrainAll reads and clears in
// one critical section, so a concurrent Push lands either fully in the
// result or fully in the next drain.
type BoundedEventBuffer struct {
	mu       sync.Mutex
	events   []domain.ActivityEvent
	capacity int
}

// NewBoundedEventBuffer creates a buffer with the given capacity.
// Non-positive capacities fall back to the reference default.
func NewBoundedEventBuffer(capacity int) *BoundedEventBuffer {
	if capacity <= 0 {
		capacity = domain.DefaultSessionConfig().BufferCapacity
	}
	return &BoundedEventBuffer{
		events:   make([]domain.ActivityEvent, 0, capacity),
		capacity: capacity,
	}
}

// Push appends an event, evicting the oldest entry on overflow.
func (b *BoundedEventBuffer) Push(event domain.ActivityEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)
	if len(b.events) > b.capacity {
		// Shift instead of re-slicing so the evicted head is released.
		copy(b.events, b.events[1:])
		b.events = b.events[:b.capacity]
	}
}

// DrainAll atomically returns the full contents and clears the buffer.
func (b *BoundedEventBuffer) DrainAll() []domain.ActivityEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) == 0 {
		return nil
	}
	drained := b.events
	b.events = make([]domain.ActivityEvent, 0, b.capacity)
	return drained
}

// Len returns the current number of buffered events.
func (b *BoundedEventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Capacity returns the configured capacity.
func (b *BoundedEventBuffer) Capacity() int { return b.capacity }

// Ensure BoundedEventBuffer implements domain.EventSink.
var _ domain.EventSink = (*BoundedEventBuffer)(nil)
