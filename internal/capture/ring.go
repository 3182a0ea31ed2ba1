package capture

import (
	"sync"

	"github.com/opspulse/workmon/internal/domain"
)

// KeystrokeRingBuffer keeps the most recent keystrokes for on-demand
// inspection. Insertion evicts the oldest entry beyond capacity; TakeAll is
// an atomic read-and-clear.
type KeystrokeRingBuffer struct {
	mu       sync.Mutex
	keys     []domain.KeyEvent
	capacity int
}

// NewKeystrokeRingBuffer creates a ring with the given capacity.
func NewKeystrokeRingBuffer(capacity int) *KeystrokeRingBuffer {
	if capacity <= 0 {
		capacity = domain.DefaultSessionConfig().KeystrokeRingCapacity
	}
	return &KeystrokeRingBuffer{
		keys:     make([]domain.KeyEvent, 0, capacity),
		capacity: capacity,
	}
}

// Append records a keystroke, evicting the oldest on overflow.
func (r *KeystrokeRingBuffer) Append(k domain.KeyEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keys = append(r.keys, k)
	if len(r.keys) > r.capacity {
		copy(r.keys, r.keys[1:])
		r.keys = r.keys[:r.capacity]
	}
}

// TakeAll returns the ordered contents and clears the ring.
func (r *KeystrokeRingBuffer) TakeAll() []domain.KeyEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return nil
	}
	taken := r.keys
	r.keys = make([]domain.KeyEvent, 0, r.capacity)
	return taken
}

// Len returns the current number of held keystrokes.
func (r *KeystrokeRingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}
