package capture

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// IdleProber reports how long the system has been without input.
type IdleProber interface {
	IdleSeconds() (float64, error)
}

// IdleSource samples the OS idle duration on a timer and compares it
// against the configured threshold. It emits an IdleStateEvent only on an
// active<->idle transition, never repeatedly while the state is unchanged.
type IdleSource struct {
	prober    IdleProber
	sink      domain.EventSink
	threshold int
	interval  time.Duration
	emitIdle  bool
	clock     func() time.Time
	logger    *zap.Logger

	mu        sync.Mutex
	installed bool
	wasIdle   bool
	cancel    context.CancelFunc
	done      sync.WaitGroup
}

// NewIdleSource creates an idle sampler. emitIdle mirrors the subject's
// idle-tracking consent flag.
func NewIdleSource(prober IdleProber, sink domain.EventSink, cfg domain.SessionConfig, emitIdle bool, logger *zap.Logger) *IdleSource {
	return &IdleSource{
		prober:    prober,
		sink:      sink,
		threshold: cfg.IdleThresholdSeconds,
		interval:  time.Duration(cfg.IdlePollIntervalSeconds) * time.Second,
		emitIdle:  emitIdle,
		clock:     time.Now,
		logger:    logger,
	}
}

// Name implements domain.EventSource.
func (s *IdleSource) Name() string { return "idle" }

// Required implements domain.EventSource.
func (s *IdleSource) Required() (domain.Capability, bool) {
	return domain.CapabilityAccessibility, true
}

// Install starts the sampling loop.
func (s *IdleSource) Install(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.installed = true
	s.wasIdle = false

	s.done.Add(1)
	go s.run(loopCtx)
	return nil
}

// Uninstall stops the loop and waits for the in-flight sample.
func (s *IdleSource) Uninstall() error {
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

func (s *IdleSource) run(ctx context.Context) {
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

// sample reads the idle duration once and emits on threshold crossings.
func (s *IdleSource) sample() {
	seconds, err := s.prober.IdleSeconds()
	if err != nil {
		s.logger.Debug("idle probe failed", zap.Error(err))
		return
	}

	isIdle := seconds >= float64(s.threshold)

	s.mu.Lock()
	changed := isIdle != s.wasIdle
	s.wasIdle = isIdle
	s.mu.Unlock()

	if !changed || !s.emitIdle {
		return
	}

	ev := domain.IdleStateEvent{
		IsIdle:           isIdle,
		IdleSeconds:      seconds,
		ThresholdSeconds: s.threshold,
	}
	s.sink.Push(domain.ActivityEvent{
		Kind:      domain.KindIdle,
		Timestamp: s.clock(),
		Idle:      &ev,
	})
}

var _ domain.EventSource = (*IdleSource)(nil)
