package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// scriptedProber implements IdleProber, returning one reading per call.
type scriptedProber struct {
	readings []float64
	errs     []error
	calls    int
}

func (p *scriptedProber) IdleSeconds() (float64, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return 0, p.errs[i]
	}
	if i >= len(p.readings) {
		return 0, nil
	}
	return p.readings[i], nil
}

func newIdleSourceForTest(prober IdleProber, sink domain.EventSink, threshold int, emit bool) *IdleSource {
	cfg := domain.DefaultSessionConfig()
	cfg.IdleThresholdSeconds = threshold
	return NewIdleSource(prober, sink, cfg, emit, zap.NewNop())
}

func TestIdleSource_EmitsOnlyOnTransition(t *testing.T) {
	// Readings 30, 65, 70, 5 against a 60s threshold cross the boundary
	// exactly twice: into idle after 65, back to active after 5.
	prober := &scriptedProber{readings: []float64{30, 65, 70, 5}}
	buf := NewBoundedEventBuffer(10)
	src := newIdleSourceForTest(prober, buf, 60, true)

	for i := 0; i < 4; i++ {
		src.sample()
	}

	events := buf.DrainAll()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, domain.KindIdle, first.Kind)
	require.NotNil(t, first.Idle)
	assert.True(t, first.Idle.IsIdle)
	assert.Equal(t, 65.0, first.Idle.IdleSeconds)
	assert.Equal(t, 60, first.Idle.ThresholdSeconds)

	second := events[1]
	require.NotNil(t, second.Idle)
	assert.False(t, second.Idle.IsIdle)
	assert.Equal(t, 5.0, second.Idle.IdleSeconds)
}

func TestIdleSource_ThresholdIsInclusive(t *testing.T) {
	prober := &scriptedProber{readings: []float64{60}}
	buf := NewBoundedEventBuffer(10)
	src := newIdleSourceForTest(prober, buf, 60, true)

	src.sample()

	events := buf.DrainAll()
	require.Len(t, events, 1)
	assert.True(t, events[0].Idle.IsIdle)
}

func TestIdleSource_ConsentOffSuppressesEvents(t *testing.T) {
	prober := &scriptedProber{readings: []float64{65, 5, 70}}
	buf := NewBoundedEventBuffer(10)
	src := newIdleSourceForTest(prober, buf, 60, false)

	for i := 0; i < 3; i++ {
		src.sample()
	}

	assert.Empty(t, buf.DrainAll())
}

func TestIdleSource_ProbeErrorKeepsState(t *testing.T) {
	prober := &scriptedProber{
		readings: []float64{65, 0, 70},
		errs:     []error{nil, assert.AnError, nil},
	}
	buf := NewBoundedEventBuffer(10)
	src := newIdleSourceForTest(prober, buf, 60, true)

	for i := 0; i < 3; i++ {
		src.sample()
	}

	// One transition into idle; the failed probe neither emits nor resets.
	events := buf.DrainAll()
	require.Len(t, events, 1)
	assert.True(t, events[0].Idle.IsIdle)
}

func TestIdleSource_InstallUninstall(t *testing.T) {
	buf := NewBoundedEventBuffer(10)
	cfg := domain.DefaultSessionConfig()
	cfg.IdlePollIntervalSeconds = 1
	src := NewIdleSource(&scriptedProber{}, buf, cfg, true, zap.NewNop())

	require.NoError(t, src.Install(context.Background()))
	require.NoError(t, src.Install(context.Background())) // idempotent

	done := make(chan struct{})
	go func() {
		_ = src.Uninstall()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Uninstall did not return")
	}

	require.NoError(t, src.Uninstall()) // idempotent
}
