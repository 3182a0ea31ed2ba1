package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// ErrNoBrowserProbe is returned when the session is started without a
// per-browser data source; the controller degrades instead of failing.
var ErrNoBrowserProbe = errors.New("no browser probe configured")

// recognizedBrowsers maps bundle identifiers to display names. Only the
// focused applications listed here are ever probed.
var recognizedBrowsers = map[string]string{
	"com.google.Chrome":        "Chrome",
	"com.apple.Safari":         "Safari",
	"org.mozilla.firefox":      "Firefox",
	"com.microsoft.edgemac":    "Edge",
	"com.operasoftware.Opera":  "Opera",
}

// BrowserProbe extracts the current page from a specific browser. Data
// extraction is browser-specific and pluggable; implementations live
// outside the capture engine.
type BrowserProbe interface {
	Navigation(bundleID string) (domain.BrowserNavigationEvent, error)
}

// BrowserSource polls the focus context and, only while a recognized
// browser is frontmost, emits BrowserNavigationEvents.
type BrowserSource struct {
	probe    BrowserProbe
	sink     domain.EventSink
	tracker  *FocusContextTracker
	interval time.Duration
	emitWeb  bool
	clock    func() time.Time
	logger   *zap.Logger

	mu        sync.Mutex
	installed bool
	lastURL   string
	cancel    context.CancelFunc
	done      sync.WaitGroup
}

// NewBrowserSource creates a browser poller. emitWeb mirrors the subject's
// website-tracking consent flag.
func NewBrowserSource(probe BrowserProbe, sink domain.EventSink, tracker *FocusContextTracker, cfg domain.SessionConfig, emitWeb bool, logger *zap.Logger) *BrowserSource {
	return &BrowserSource{
		probe:    probe,
		sink:     sink,
		tracker:  tracker,
		interval: time.Duration(cfg.BrowserPollIntervalSec) * time.Second,
		emitWeb:  emitWeb,
		clock:    time.Now,
		logger:   logger,
	}
}

// Name implements domain.EventSource.
func (s *BrowserSource) Name() string { return "browser" }

// Required implements domain.EventSource. Browser polling is optional; a
// missing probe degrades the session rather than failing the start.
func (s *BrowserSource) Required() (domain.Capability, bool) {
	return domain.CapabilityAccessibility, false
}

// Install starts the polling loop.
func (s *BrowserSource) Install(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		return nil
	}
	if s.probe == nil {
		return ErrNoBrowserProbe
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.installed = true
	s.lastURL = ""

	s.done.Add(1)
	go s.run(loopCtx)
	return nil
}

// Uninstall stops the loop and waits for the in-flight poll.
func (s *BrowserSource) Uninstall() error {
	s.mu.Lock()
	if !s.installed {
		s.mu.Unlock()
		return nil
	}
	s.installed = false
	s.cancel()
	s.mu.Unlock()

	s.done.Wait()
	return nil
}

func (s *BrowserSource) run(ctx context.Context) {
	defer s.done.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

// sample probes the focused browser once. Non-browser focus and probe
// failures are silent; a page identical to the previous sample is skipped.
func (s *BrowserSource) sample() {
	if !s.emitWeb {
		return
	}

	focus, ok := s.tracker.Current()
	if !ok {
		return
	}
	browser, recognized := recognizedBrowsers[focus.BundleID]
	if !recognized {
		return
	}

	nav, err := s.probe.Navigation(focus.BundleID)
	if err != nil {
		s.logger.Debug("browser probe failed",
			zap.String("bundleId", focus.BundleID),
			zap.Error(err))
		return
	}
	nav.Browser = browser

	s.mu.Lock()
	repeat := nav.URL != "" && nav.URL == s.lastURL
	s.lastURL = nav.URL
	s.mu.Unlock()
	if repeat {
		return
	}

	s.sink.Push(domain.ActivityEvent{
		Kind:      domain.KindBrowser,
		Timestamp: s.clock(),
		Browser:   &nav,
	})
}

// RecognizedBrowser returns the display name for a bundle identifier.
func RecognizedBrowser(bundleID string) (string, bool) {
	name, ok := recognizedBrowsers[bundleID]
	return name, ok
}

var _ domain.EventSource = (*BrowserSource)(nil)
