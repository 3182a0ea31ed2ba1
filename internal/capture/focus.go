package capture

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// RawFocusEvent is an application-activation or window-change notification
// before enrichment.
type RawFocusEvent struct {
	PID         int
	BundleID    string
	WindowTitle string
	Bounds      domain.WindowBounds
	Fullscreen  bool
	Minimized   bool
	When        time.Time
}

// FocusHook subscribes to activation/window-change notifications.
type FocusHook interface {
	Install(handler func(RawFocusEvent)) error
	Uninstall() error
}

// FocusSource overwrites the shared focus context on every change and emits
// FocusChangeEvents. The tracker is always kept current so the idle and
// browser samplers stay accurate; event emission itself is gated by the
// subject's app-tracking consent.
type FocusSource struct {
	hook     FocusHook
	sink     domain.EventSink
	tracker  *FocusContextTracker
	procs    domain.ProcessResolver
	emitApps bool
	logger   *zap.Logger

	mu        sync.Mutex
	installed bool
	inflight  sync.WaitGroup
}

// NewFocusSource creates a focus source. emitApps mirrors the subject's
// AllowAppTracking consent flag.
func NewFocusSource(hook FocusHook, sink domain.EventSink, tracker *FocusContextTracker, procs domain.ProcessResolver, emitApps bool, logger *zap.Logger) *FocusSource {
	return &FocusSource{
		hook:     hook,
		sink:     sink,
		tracker:  tracker,
		procs:    procs,
		emitApps: emitApps,
		logger:   logger,
	}
}

// Name implements domain.EventSource.
func (s *FocusSource) Name() string { return "focus" }

// Required implements domain.EventSource. Focus observation is the
// session's backbone and rides on the accessibility capability.
func (s *FocusSource) Required() (domain.Capability, bool) {
	return domain.CapabilityAccessibility, true
}

// Install subscribes to focus notifications.
func (s *FocusSource) Install(ctx context.Context) error {
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

// Uninstall unsubscribes and waits for in-flight callbacks.
func (s *FocusSource) Uninstall() error {
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

func (s *FocusSource) handle(raw RawFocusEvent) {
	s.inflight.Add(1)
	defer s.inflight.Done()

	s.mu.Lock()
	installed := s.installed
	s.mu.Unlock()
	if !installed {
		return
	}

	name, path, err := s.procs.AppInfo(raw.PID)
	if err != nil {
		s.logger.Debug("process lookup failed", zap.Int("pid", raw.PID), zap.Error(err))
	}

	ctx := domain.FocusContext{
		AppName:     name,
		AppPath:     path,
		BundleID:    raw.BundleID,
		PID:         raw.PID,
		WindowTitle: raw.WindowTitle,
		Bounds:      raw.Bounds,
		Fullscreen:  raw.Fullscreen,
		Minimized:   raw.Minimized,
		ObservedAt:  raw.When,
	}
	s.tracker.Set(ctx)

	if !s.emitApps {
		return
	}

	ev := domain.FocusChangeEvent{
		AppName:     name,
		AppPath:     path,
		BundleID:    raw.BundleID,
		PID:         raw.PID,
		WindowTitle: raw.WindowTitle,
		Bounds:      raw.Bounds,
		Fullscreen:  raw.Fullscreen,
		Minimized:   raw.Minimized,
	}
	s.sink.Push(domain.ActivityEvent{
		Kind:      domain.KindFocus,
		Timestamp: raw.When,
		Focus:     &ev,
	})
}

var _ domain.EventSource = (*FocusSource)(nil)
