// Package infra implements infrastructure concerns: capability probing,
// process resolution, the encrypted spool, and collaborator implementations
// backed by local resources.
package infra

import (
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// Env overrides for capability probing. Values like "granted"/"true" force
// a capability on, "denied"/"false" force it off. Used by tests and by
// deployments that manage TCC profiles centrally.
const (
	envAccessibility   = "WORKMON_ACCESSIBILITY"
	envScreenCapture   = "WORKMON_SCREEN_CAPTURE"
	envInputMonitoring = "WORKMON_INPUT_MONITORING"
)

// PromptFunc triggers the OS-native consent dialog for one capability.
// Fire-and-forget; results show up in later queries.
type PromptFunc func(c domain.Capability)

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// Gate implements domain.CapabilityGate. Query is side-effect-free and
// recomputed on every call; absence of a capability is false, never an
// error.
type Gate struct {
	lookup LookupEnvFunc
	prompt PromptFunc
	logger *zap.Logger
}

// NewGate creates a capability gate. A nil lookup falls back to the
// process environment; a nil prompt makes Request a logged no-op.
func NewGate(lookup LookupEnvFunc, prompt PromptFunc, logger *zap.Logger) *Gate {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Gate{lookup: lookup, prompt: prompt, logger: logger}
}

// Query probes the live permission state for all three capabilities.
func (g *Gate) Query() domain.CapabilitySnapshot {
	return domain.CapabilitySnapshot{
		Accessibility:   g.probe(envAccessibility),
		ScreenCapture:   g.probe(envScreenCapture),
		InputMonitoring: g.probe(envInputMonitoring),
	}
}

// probe interprets an env override, falling back to the platform default.
// Unmanaged darwin installs report false until the user grants access via
// System Settings; everywhere else the surfaces are considered open.
func (g *Gate) probe(envKey string) bool {
	if value, ok := g.lookup(envKey); ok {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "granted", "allow", "allowed", "yes", "true", "1":
			return true
		case "denied", "no", "false", "blocked", "0":
			return false
		}
	}
	return runtime.GOOS != "darwin"
}

// Request triggers the consent prompt for a single capability.
func (g *Gate) Request(c domain.Capability) {
	g.logger.Info("requesting capability", zap.String("capability", string(c)))
	if g.prompt != nil {
		g.prompt(c)
	}
}

// Ensure Gate implements domain.CapabilityGate.
var _ domain.CapabilityGate = (*Gate)(nil)
