package capture

import (
	"sync"

	"github.com/opspulse/workmon/internal/domain"
)

// FocusContextTracker holds the single current focus context. Focus-change
// callbacks overwrite it wholesale; periodic samplers read a snapshot.
type FocusContextTracker struct {
	mu      sync.RWMutex
	current domain.FocusContext
	set     bool
}

// NewFocusContextTracker returns an empty tracker.
func NewFocusContextTracker() *FocusContextTracker {
	return &FocusContextTracker{}
}

// Set replaces the current focus context.
func (t *FocusContextTracker) Set(ctx domain.FocusContext) {
	t.mu.Lock()
	t.current = ctx
	t.set = true
	t.mu.Unlock()
}

// Current returns a copy of the current context and whether one has been
// observed since the tracker was created or reset.
func (t *FocusContextTracker) Current() (domain.FocusContext, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.set
}

// Reset clears the tracked context. Called when the session stops.
func (t *FocusContextTracker) Reset() {
	t.mu.Lock()
	t.current = domain.FocusContext{}
	t.set = false
	t.mu.Unlock()
}
