package capture

import (
	"errors"
	"fmt"

	"github.com/opspulse/workmon/internal/domain"
)

// ErrScreenCaptureUnavailable is returned when a screenshot is requested
// without the screen-capture capability.
var ErrScreenCaptureUnavailable = errors.New("screen capture capability not granted")

// ErrNoDisplay is returned when no primary display can be resolved.
var ErrNoDisplay = errors.New("no primary display available")

// ErrScreenshotsNotConsented is returned when the subject's policy does not
// allow screenshots.
var ErrScreenshotsNotConsented = errors.New("screenshots not permitted by subject policy")

// PermissionDeniedError aborts a start attempt when the accessibility
// capability is missing. The snapshot tells the caller what to re-request
// before retrying.
type PermissionDeniedError struct {
	Snapshot domain.CapabilitySnapshot
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("accessibility permission denied (snapshot: accessibility=%t screenCapture=%t inputMonitoring=%t)",
		e.Snapshot.Accessibility, e.Snapshot.ScreenCapture, e.Snapshot.InputMonitoring)
}

// HookInstallError wraps a mandatory source's install failure. The
// controller treats it like a permission denial: full rollback, no partial
// state.
type HookInstallError struct {
	Source string
	Err    error
}

func (e *HookInstallError) Error() string {
	return fmt.Sprintf("install %s hook: %v", e.Source, e.Err)
}

func (e *HookInstallError) Unwrap() error { return e.Err }
