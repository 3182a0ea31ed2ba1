package infra

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/opspulse/workmon/internal/capture"
	"github.com/opspulse/workmon/internal/domain"
)

// Simulated platform hooks. The production agent receives raw events from
// the native desktop bridge; these stand-ins replay a small synthetic
// timeline so the full pipeline can run on any platform (dev boxes, CI).

// SimulatedKeyboardHook emits a scripted keystroke on a fixed cadence.
type SimulatedKeyboardHook struct {
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   sync.WaitGroup
}

var simKeys = []capture.RawKeyEvent{
	{Key: "w", KeyCode: 13},
	{Key: "o", KeyCode: 31},
	{Key: "r", KeyCode: 15},
	{Key: "k", KeyCode: 40, Modifiers: []string{"shift"}},
}

// Install starts the synthetic key stream.
func (h *SimulatedKeyboardHook) Install(handler func(capture.RawKeyEvent)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done.Add(1)
	go func() {
		defer h.done.Done()
		ticker := time.NewTicker(h.interval())
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				raw := simKeys[i%len(simKeys)]
				raw.When = time.Now()
				handler(raw)
				i++
			}
		}
	}()
	return nil
}

// Uninstall stops the stream.
func (h *SimulatedKeyboardHook) Uninstall() error {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.mu.Unlock()
	h.done.Wait()
	return nil
}

func (h *SimulatedKeyboardHook) interval() time.Duration {
	if h.Interval > 0 {
		return h.Interval
	}
	return time.Second
}

// SimulatedPointerHook emits synthetic pointer moves and clicks.
type SimulatedPointerHook struct {
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// Install starts the synthetic pointer stream.
func (h *SimulatedPointerHook) Install(handler func(capture.RawPointerEvent)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done.Add(1)
	go func() {
		defer h.done.Done()
		ticker := time.NewTicker(h.interval())
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				action := capture.PointerActionMove
				clicks := 0
				if i%4 == 3 {
					action = capture.PointerActionClick
					clicks = 1
				}
				handler(capture.RawPointerEvent{
					Action:     action,
					X:          float64(100 + i%300),
					Y:          float64(80 + i%200),
					ClickCount: clicks,
					When:       time.Now(),
				})
				i++
			}
		}
	}()
	return nil
}

// Uninstall stops the stream.
func (h *SimulatedPointerHook) Uninstall() error {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.mu.Unlock()
	h.done.Wait()
	return nil
}

func (h *SimulatedPointerHook) interval() time.Duration {
	if h.Interval > 0 {
		return h.Interval
	}
	return 750 * time.Millisecond
}

// SimulatedFocusHook reports the agent's own process as the focused app on
// a cadence, which gives the resolver a real PID to enrich.
type SimulatedFocusHook struct {
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// Install starts the synthetic focus stream.
func (h *SimulatedFocusHook) Install(handler func(capture.RawFocusEvent)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done.Add(1)
	go func() {
		defer h.done.Done()
		ticker := time.NewTicker(h.interval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				handler(capture.RawFocusEvent{
					PID:         os.Getpid(),
					WindowTitle: "workmon",
					Bounds:      domain.WindowBounds{Width: 1280, Height: 800},
					When:        time.Now(),
				})
			}
		}
	}()
	return nil
}

// Uninstall stops the stream.
func (h *SimulatedFocusHook) Uninstall() error {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.mu.Unlock()
	h.done.Wait()
	return nil
}

func (h *SimulatedFocusHook) interval() time.Duration {
	if h.Interval > 0 {
		return h.Interval
	}
	return 5 * time.Second
}

// SimulatedIdleProber always reports activity. Real installs read the HID
// idle counter from the native bridge.
type SimulatedIdleProber struct{}

// IdleSeconds implements capture.IdleProber.
func (SimulatedIdleProber) IdleSeconds() (float64, error) { return 0, nil }

// minimalPNG is a valid 1x1 transparent PNG used by the simulated grabber.
var minimalPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// SimulatedScreenGrabber returns a fixed 1x1 PNG.
type SimulatedScreenGrabber struct{}

// Grab implements capture.ScreenGrabber.
func (SimulatedScreenGrabber) Grab(ctx context.Context) (capture.Screenshot, error) {
	if err := ctx.Err(); err != nil {
		return capture.Screenshot{}, err
	}
	return capture.Screenshot{
		Data:    append([]byte(nil), minimalPNG...),
		Width:   1,
		Height:  1,
		TakenAt: time.Now(),
	}, nil
}
