package domain

import "context"

// EventSink receives normalized events from the capture sources.
// Push must never block a producer; overflow is handled by eviction.
type EventSink interface {
	Push(event ActivityEvent)
}

// EventSource is one captured signal (keyboard, pointer, focus, idle,
// browser, screenshot). Install attaches the underlying hook or timer and
// Uninstall tears it down. Uninstall is idempotent and safe to call on a
// source that never installed; it returns only after in-flight callbacks
// have finished.
type EventSource interface {
	// Name identifies the source in logs and degraded-mode flags.
	Name() string

	// Required returns the capability this source needs and whether the
	// whole session must fail when it is absent. Optional sources degrade
	// instead of blocking the start.
	Required() (cap Capability, mandatory bool)

	// Install attaches hooks/timers and begins emitting into the sink.
	Install(ctx context.Context) error

	// Uninstall detaches hooks/timers. Safe no-op when not installed.
	Uninstall() error
}

// CapabilityGate queries and requests OS-level permissions.
// Implementations never return errors: an absent capability is false.
type CapabilityGate interface {
	// Query probes the live permission state without side effects.
	Query() CapabilitySnapshot

	// Request triggers the OS consent prompt for one capability.
	// Fire-and-forget; the result is observed via a later Query.
	Request(c Capability)
}

// Directory is the read-only organizational lookup consumed by the
// access-scope resolver.
type Directory interface {
	// LookupUser resolves a user's role and org placement.
	LookupUser(id string) (UserRecord, bool)

	// UsersInDepartment returns all user IDs in a department.
	UsersInDepartment(departmentID string) []string

	// UsersInOrganization returns all user IDs in an organization.
	UsersInOrganization(organizationID string) []string

	// AllUsers returns every known user ID.
	AllUsers() []string
}

// PolicyStore provides each subject's consent flags.
type PolicyStore interface {
	// GetPolicy returns the subject's policy, or the default policy when
	// none has been recorded.
	GetPolicy(userID string) PrivacyPolicy
}

// Ingestor receives drained event batches. Transport is outside the capture
// engine's contract; it only hands off normalized sequences.
type Ingestor interface {
	Submit(ctx context.Context, batch EventBatch) error
}

// SpoolStore buffers batches that could not be submitted, surviving agent
// restarts. DequeueAll removes what it returns in the same transaction.
type SpoolStore interface {
	Enqueue(batch EventBatch) error
	DequeueAll() ([]EventBatch, error)
	Close() error
}

// ScreenshotStore receives raw image bytes and is solely responsible for
// encryption-at-rest and reference issuance.
type ScreenshotStore interface {
	Store(ctx context.Context, img []byte) (ref string, err error)
}

// ProcessResolver maps an OS process to application identity. Used to
// enrich focus events.
type ProcessResolver interface {
	// AppInfo returns the process name and executable path for a PID.
	AppInfo(pid int) (name string, exePath string, err error)
}

// ActivityReader fetches stored read-side records for a target set. The
// governance core treats storage as an external collaborator.
type ActivityReader interface {
	FetchRecords(ctx context.Context, userIDs []string, limit int) ([]ActivityRecord, error)
}
