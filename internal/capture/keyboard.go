package capture

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// RawKeyEvent is what a platform keyboard hook delivers before
// normalization.
type RawKeyEvent struct {
	Key       string
	KeyCode   int
	Modifiers []string
	When      time.Time
}

// KeyboardHook attaches a global+local key monitor and invokes the handler
// on the platform's event-delivery loop. Implementations live in infra, one
// per platform.
type KeyboardHook interface {
	Install(handler func(RawKeyEvent)) error
	Uninstall() error
}

// KeyboardSource normalizes raw keystrokes into KeyEvents, deriving the
// inter-key interval, and feeds both the shared buffer and the keystroke
// ring. Hook callbacks only normalize and enqueue; no long-running work.
type KeyboardSource struct {
	hook   KeyboardHook
	sink   domain.EventSink
	ring   *KeystrokeRingBuffer
	logger *zap.Logger

	mu        sync.Mutex
	installed bool
	lastKeyAt time.Time
	inflight  sync.WaitGroup
}

// NewKeyboardSource creates a keyboard source bound to a platform hook.
func NewKeyboardSource(hook KeyboardHook, sink domain.EventSink, ring *KeystrokeRingBuffer, logger *zap.Logger) *KeyboardSource {
	return &KeyboardSource{hook: hook, sink: sink, ring: ring, logger: logger}
}

// Name implements domain.EventSource.
func (s *KeyboardSource) Name() string { return "keyboard" }

// Required implements domain.EventSource. Input monitoring can be absent
// without blocking the session, so the source is not mandatory on
// capability, but a failed hook install aborts the start.
func (s *KeyboardSource) Required() (domain.Capability, bool) {
	return domain.CapabilityInputMonitoring, true
}

// Install attaches the keyboard hook.
func (s *KeyboardSource) Install(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		return nil
	}
	if err := s.hook.Install(s.handle); err != nil {
		return err
	}
	s.installed = true
	return nil
}

// Uninstall detaches the hook and waits for in-flight callbacks.
// Safe no-op when not installed.
func (s *KeyboardSource) Uninstall() error {
	s.mu.Lock()
	if !s.installed {
		s.mu.Unlock()
		return nil
	}
	s.installed = false
	err := s.hook.Uninstall()
	s.mu.Unlock()

	s.inflight.Wait()
	return err
}

func (s *KeyboardSource) handle(raw RawKeyEvent) {
	s.inflight.Add(1)
	defer s.inflight.Done()

	s.mu.Lock()
	if !s.installed {
		s.mu.Unlock()
		return
	}
	var interval int64
	if !s.lastKeyAt.IsZero() {
		interval = raw.When.Sub(s.lastKeyAt).Milliseconds()
	}
	s.lastKeyAt = raw.When
	s.mu.Unlock()

	key := domain.KeyEvent{
		Key:        raw.Key,
		KeyCode:    raw.KeyCode,
		Modifiers:  raw.Modifiers,
		IntervalMs: interval,
	}
	s.ring.Append(key)
	s.sink.Push(domain.ActivityEvent{
		Kind:      domain.KindKey,
		Timestamp: raw.When,
		Key:       &key,
	})
}

var _ domain.EventSource = (*KeyboardSource)(nil)
