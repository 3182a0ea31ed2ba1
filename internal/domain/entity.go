// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// Capability identifies one OS-level permission surface.
type Capability string

const (
	CapabilityAccessibility   Capability = "accessibility"
	CapabilityScreenCapture   Capability = "screen_capture"
	CapabilityInputMonitoring Capability = "input_monitoring"
)

// CapabilitySnapshot is a point-in-time read of which OS permissions are
// granted. It is recomputed on every query and never cached across a start
// attempt.
type CapabilitySnapshot struct {
	Accessibility   bool `json:"accessibility"`
	ScreenCapture   bool `json:"screenCapture"`
	InputMonitoring bool `json:"inputMonitoring"`
}

// Has reports whether a single capability is granted in the snapshot.
func (s CapabilitySnapshot) Has(c Capability) bool {
	switch c {
	case CapabilityAccessibility:
		return s.Accessibility
	case CapabilityScreenCapture:
		return s.ScreenCapture
	case CapabilityInputMonitoring:
		return s.InputMonitoring
	}
	return false
}

// SessionState is the lifecycle state of the monitoring session.
type SessionState string

const (
	StateIdle     SessionState = "idle"
	StateStarting SessionState = "starting"
	StateRunning  SessionState = "running"
	StateStopping SessionState = "stopping"
)

// SessionConfig tunes the capture engine. The idle threshold and buffer
// capacity are configuration, not constants; the defaults below are the
// reference values.
type SessionConfig struct {
	IdleThresholdSeconds    int
	IdlePollIntervalSeconds int
	BrowserPollIntervalSec  int
	BufferCapacity          int
	KeystrokeRingCapacity   int
}

// DefaultSessionConfig returns the reference capture tuning.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		IdleThresholdSeconds:    60,
		IdlePollIntervalSeconds: 5,
		BrowserPollIntervalSec:  2,
		BufferCapacity:          100,
		KeystrokeRingCapacity:   100,
	}
}

// EventKind discriminates the ActivityEvent union.
type EventKind string

const (
	KindKey        EventKind = "key"
	KindPointer    EventKind = "pointer"
	KindFocus      EventKind = "focus"
	KindIdle       EventKind = "idle"
	KindBrowser    EventKind = "browser"
	KindScreenshot EventKind = "screenshot"
)

// ActivityEvent is a normalized record of one captured signal. Exactly one
// payload pointer matching Kind is non-nil. Subject identity is stamped by
// the ingestion collaborator, never by the capture engine.
type ActivityEvent struct {
	Kind       EventKind               `json:"kind"`
	Timestamp  time.Time               `json:"timestamp"`
	Key        *KeyEvent               `json:"key,omitempty"`
	Pointer    *PointerEvent           `json:"pointer,omitempty"`
	Focus      *FocusChangeEvent       `json:"focus,omitempty"`
	Idle       *IdleStateEvent         `json:"idle,omitempty"`
	Browser    *BrowserNavigationEvent `json:"browser,omitempty"`
	Screenshot *ScreenshotEvent        `json:"screenshot,omitempty"`
}

// KeyEvent describes a single keystroke.
type KeyEvent struct {
	Key        string   `json:"key"`
	KeyCode    int      `json:"keyCode"`
	Modifiers  []string `json:"modifiers,omitempty"`
	IntervalMs int64    `json:"intervalMs"`
}

// PointerEvent describes a mouse/trackpad interaction.
type PointerEvent struct {
	Action      string  `json:"action"` // click, release, move, scroll
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Button      string  `json:"button,omitempty"`
	ClickCount  int     `json:"clickCount,omitempty"`
	ScrollDelta float64 `json:"scrollDelta,omitempty"`
}

// WindowBounds is the frame of the focused window in screen coordinates.
type WindowBounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FocusChangeEvent records an application/window focus transition.
type FocusChangeEvent struct {
	AppName     string       `json:"applicationName"`
	AppPath     string       `json:"applicationPath,omitempty"`
	BundleID    string       `json:"bundleId,omitempty"`
	PID         int          `json:"pid,omitempty"`
	WindowTitle string       `json:"windowTitle,omitempty"`
	Bounds      WindowBounds `json:"windowBounds"`
	Fullscreen  bool         `json:"isFullscreen"`
	Minimized   bool         `json:"isMinimized"`
}

// IdleStateEvent is emitted only on an active<->idle transition.
type IdleStateEvent struct {
	IsIdle           bool    `json:"isIdle"`
	IdleSeconds      float64 `json:"idleSeconds"`
	ThresholdSeconds int     `json:"thresholdSeconds"`
}

// BrowserNavigationEvent records the focused browser's current page.
type BrowserNavigationEvent struct {
	Browser string `json:"browserName"`
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Domain  string `json:"domain,omitempty"`
	TabID   string `json:"tabId,omitempty"`
}

// ScreenshotEvent references a stored capture; the raw bytes go straight to
// the screenshot store, never through the event buffer.
type ScreenshotEvent struct {
	Ref      string `json:"ref"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	ByteSize int    `json:"byteSize"`
}

// FocusContext is the single mutable "current" window/application state.
// It is overwritten wholesale on each focus change.
type FocusContext struct {
	AppName     string
	AppPath     string
	BundleID    string
	PID         int
	WindowTitle string
	Bounds      WindowBounds
	Fullscreen  bool
	Minimized   bool
	ObservedAt  time.Time
}

// EventBatch is a drained sequence of events handed to the ingestion
// collaborator. Subject stamping happens downstream.
type EventBatch struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	CreatedAt time.Time       `json:"createdAt"`
	Events    []ActivityEvent `json:"events"`
}

// PrivacyPolicy is a subject's consent flags. Capture gates against it once
// at emit time, and the read path gates against it again in the filter.
type PrivacyPolicy struct {
	AllowScreenshots      bool `json:"allowScreenshots"`
	AllowLocationTracking bool `json:"allowLocationTracking"`
	AllowAppTracking      bool `json:"allowAppTracking"`
	AllowWebsiteTracking  bool `json:"allowWebsiteTracking"`
	AllowIdleTracking     bool `json:"allowIdleTracking"`
	ShareDataWithManager  bool `json:"shareDataWithManager"`
	ShareDataWithHR       bool `json:"shareDataWithHR"`
}

// Role is a viewer's organizational role. Ranks are strictly ordered;
// access scopes grow monotonically with rank.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// Rank returns the ordering of a role, -1 for unknown roles.
func (r Role) Rank() int {
	switch r {
	case RoleEmployee:
		return 0
	case RoleManager:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	}
	return -1
}

// Valid reports whether the role is one of the known ranks.
func (r Role) Valid() bool { return r.Rank() >= 0 }

// AccessScope is the breadth of users a viewer may query.
type AccessScope string

const (
	ScopeSelf         AccessScope = "self"
	ScopeTeam         AccessScope = "team"
	ScopeDepartment   AccessScope = "department"
	ScopeOrganization AccessScope = "organization"
	ScopeAll          AccessScope = "all"
)

// Requester identifies the viewer on the read path.
type Requester struct {
	ID             string
	Role           Role
	DepartmentID   string
	OrganizationID string
}

// UserRecord is the directory's view of a user.
type UserRecord struct {
	ID             string
	Role           Role
	DepartmentID   string
	OrganizationID string
}

// AccessDecision is the resolver outcome. Denial is a value, not an error;
// callers must check Allowed before using TargetSet.
type AccessDecision struct {
	Allowed   bool
	Scope     AccessScope
	TargetSet []string
}

// GeoPoint is an optional location fix attached to read-side records.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ActivityRecord is the read-side shape of a stored event: the subject
// stamp plus flattened sensitive fields. Optional fields are pointers so the
// filter can omit them in a way that is distinguishable from a legitimate
// zero value.
type ActivityRecord struct {
	SubjectID     string    `json:"userId"`
	DepartmentID  string    `json:"departmentId,omitempty"`
	Kind          EventKind `json:"kind"`
	Timestamp     time.Time `json:"timestamp"`
	AppName       string    `json:"applicationName,omitempty"`
	WindowTitle   *string   `json:"windowTitle,omitempty"`
	WebsiteURL    *string   `json:"websiteUrl,omitempty"`
	Location      *GeoPoint `json:"location,omitempty"`
	IsIdle        *bool     `json:"isIdle,omitempty"`
	ScreenshotRef *string   `json:"screenshotRef,omitempty"`
}

// Clone returns a deep copy so the filter never mutates the stored record.
func (r ActivityRecord) Clone() ActivityRecord {
	out := r
	if r.WindowTitle != nil {
		v := *r.WindowTitle
		out.WindowTitle = &v
	}
	if r.WebsiteURL != nil {
		v := *r.WebsiteURL
		out.WebsiteURL = &v
	}
	if r.Location != nil {
		v := *r.Location
		out.Location = &v
	}
	if r.IsIdle != nil {
		v := *r.IsIdle
		out.IsIdle = &v
	}
	if r.ScreenshotRef != nil {
		v := *r.ScreenshotRef
		out.ScreenshotRef = &v
	}
	return out
}
