package capture

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// Pointer actions after normalization.
const (
	PointerActionClick   = "click"
	PointerActionRelease = "release"
	PointerActionMove    = "move"
	PointerActionScroll  = "scroll"
)

// RawPointerEvent is the platform hook's shape before normalization.
type RawPointerEvent struct {
	Action      string
	X, Y        float64
	Button      int
	ClickCount  int
	ScrollDelta float64
	When        time.Time
}

// PointerHook attaches a global+local mouse monitor.
type PointerHook interface {
	Install(handler func(RawPointerEvent)) error
	Uninstall() error
}

// PointerSource normalizes raw mouse events into PointerEvents.
type PointerSource struct {
	hook   PointerHook
	sink   domain.EventSink
	logger *zap.Logger

	mu        sync.Mutex
	installed bool
	inflight  sync.WaitGroup
}

// NewPointerSource creates a pointer source bound to a platform hook.
func NewPointerSource(hook PointerHook, sink domain.EventSink, logger *zap.Logger) *PointerSource {
	return &PointerSource{hook: hook, sink: sink, logger: logger}
}

// Name implements domain.EventSource.
func (s *PointerSource) Name() string { return "pointer" }

// Required implements domain.EventSource.
func (s *PointerSource) Required() (domain.Capability, bool) {
	return domain.CapabilityInputMonitoring, true
}

// Install attaches the pointer hook.
func (s *PointerSource) Install(ctx context.Context) error {
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
func (s *PointerSource) Uninstall() error {
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

func (s *PointerSource) handle(raw RawPointerEvent) {
	s.inflight.Add(1)
	defer s.inflight.Done()

	s.mu.Lock()
	installed := s.installed
	s.mu.Unlock()
	if !installed {
		return
	}

	ev := domain.PointerEvent{
		Action:      raw.Action,
		X:           raw.X,
		Y:           raw.Y,
		Button:      buttonName(raw.Button),
		ClickCount:  raw.ClickCount,
		ScrollDelta: raw.ScrollDelta,
	}
	s.sink.Push(domain.ActivityEvent{
		Kind:      domain.KindPointer,
		Timestamp: raw.When,
		Pointer:   &ev,
	})
}

func buttonName(n int) string {
	switch n {
	case 0:
		return "left"
	case 1:
		return "right"
	case 2:
		return "middle"
	default:
		return "other"
	}
}

var _ domain.EventSource = (*PointerSource)(nil)
