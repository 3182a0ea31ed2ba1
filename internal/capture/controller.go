package capture

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// Controller owns start/stop of all event sources. It enforces capability
// preconditions, keeps the hook lifecycle tied one-to-one to the
// Starting/Stopping transitions, and guarantees that no source stays
// installed after any call sequence ending in the idle state.
//
// Start and Stop are serialized against each other; only one lifecycle
// transition is in flight at a time.
type Controller struct {
	mu        sync.Mutex
	state     domain.SessionState
	installed []domain.EventSource
	degraded  []string

	gate       domain.CapabilityGate
	sources    []domain.EventSource
	screenshot *ScreenshotSource
	shots      domain.ScreenshotStore
	sink       domain.EventSink
	consent    domain.PrivacyPolicy
	logger     *zap.Logger
}

// NewController creates an idle controller. The screenshot source may be
// nil when the platform offers no screen grabber.
func NewController(
	gate domain.CapabilityGate,
	sources []domain.EventSource,
	screenshot *ScreenshotSource,
	shots domain.ScreenshotStore,
	sink domain.EventSink,
	consent domain.PrivacyPolicy,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		state:      domain.StateIdle,
		gate:       gate,
		sources:    sources,
		screenshot: screenshot,
		shots:      shots,
		sink:       sink,
		consent:    consent,
		logger:     logger,
	}
}

// Start transitions the session to running. It is a no-op success when
// already running. The capability snapshot is recomputed on every attempt;
// a missing accessibility capability rolls back to idle with no source
// installed. Optional sources whose capability is absent, or whose install
// fails, put the session into degraded mode instead of failing the start.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == domain.StateRunning {
		return nil
	}

	c.state = domain.StateStarting
	c.degraded = nil

	snapshot := c.gate.Query()
	if !snapshot.Accessibility {
		c.state = domain.StateIdle
		return &PermissionDeniedError{Snapshot: snapshot}
	}

	for _, src := range c.sources {
		required, mandatory := src.Required()
		if !snapshot.Has(required) {
			// Accessibility was checked above, so a missing capability here
			// is always an individually-optional feature.
			c.logger.Warn("capability absent, source disabled",
				zap.String("source", src.Name()),
				zap.String("capability", string(required)))
			c.degraded = append(c.degraded, src.Name())
			continue
		}

		if err := src.Install(ctx); err != nil {
			if mandatory {
				c.logger.Error("hook install failed, rolling back",
					zap.String("source", src.Name()),
					zap.Error(err))
				c.rollbackLocked()
				return &HookInstallError{Source: src.Name(), Err: err}
			}
			c.logger.Warn("optional source unavailable",
				zap.String("source", src.Name()),
				zap.Error(err))
			c.degraded = append(c.degraded, src.Name())
			continue
		}
		c.installed = append(c.installed, src)
	}

	c.state = domain.StateRunning
	c.logger.Info("monitoring session running",
		zap.Int("sources", len(c.installed)),
		zap.Strings("degraded", c.degraded))
	return nil
}

// Stop uninstalls every installed source and returns to idle. It is a
// no-op success when already idle. Each source's Uninstall waits for its
// in-flight callbacks, so no hook fires after Stop returns.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == domain.StateIdle {
		return nil
	}

	c.state = domain.StateStopping
	c.rollbackLocked()
	c.logger.Info("monitoring session stopped")
	return nil
}

// rollbackLocked uninstalls all installed sources and resets to idle.
// Uninstall errors are logged but never leave a source behind; per the
// source contract Uninstall detaches regardless.
func (c *Controller) rollbackLocked() {
	for _, src := range c.installed {
		if err := src.Uninstall(); err != nil {
			c.logger.Warn("source uninstall reported error",
				zap.String("source", src.Name()),
				zap.Error(err))
		}
	}
	c.installed = nil
	c.state = domain.StateIdle
}

// State returns the current lifecycle state.
func (c *Controller) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Degraded returns the names of sources disabled at the last start.
func (c *Controller) Degraded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.degraded))
	copy(out, c.degraded)
	return out
}

// InstalledCount reports how many sources are currently installed.
func (c *Controller) InstalledCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.installed)
}

// CaptureScreenshot takes an on-demand capture, hands the raw bytes to the
// screenshot store, and emits a ScreenshotEvent referencing the stored
// image. Failures are explicit: a missing capability, missing consent, or a
// failed grab never produce a silent empty result.
func (c *Controller) CaptureScreenshot(ctx context.Context) (domain.ScreenshotEvent, error) {
	if !c.consent.AllowScreenshots {
		return domain.ScreenshotEvent{}, ErrScreenshotsNotConsented
	}
	if !c.gate.Query().ScreenCapture {
		return domain.ScreenshotEvent{}, ErrScreenCaptureUnavailable
	}
	if c.screenshot == nil {
		return domain.ScreenshotEvent{}, ErrNoDisplay
	}

	shot, err := c.screenshot.Capture(ctx)
	if err != nil {
		return domain.ScreenshotEvent{}, err
	}

	ref, err := c.shots.Store(ctx, shot.Data)
	if err != nil {
		return domain.ScreenshotEvent{}, err
	}

	event := domain.ScreenshotEvent{
		Ref:      ref,
		Width:    shot.Width,
		Height:   shot.Height,
		ByteSize: len(shot.Data),
	}
	c.sink.Push(domain.ActivityEvent{
		Kind:       domain.KindScreenshot,
		Timestamp:  shot.TakenAt,
		Screenshot: &event,
	})
	return event, nil
}
