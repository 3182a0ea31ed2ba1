package usecase

import (
	"github.com/opspulse/workmon/internal/domain"
)

// Filter redacts or generalizes sensitive fields of a record according to
// the data subject's consent and the viewer's role. It is pure and
// thread-safe: records are cloned, never mutated in place.
type Filter struct{}

// NewFilter creates the privacy filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Apply returns the record as the viewer may see it, or nil when the
// viewer may not see it at all.
//
// Rules:
//   - The data subject always sees their own record unmodified.
//   - Employee viewers never see others' data, regardless of scope.
//   - Team scope (manager viewer) without ShareDataWithManager consent:
//     window title and website URL are stripped and the application name
//     is generalized to its category.
//   - Admin viewers get the same consent-respecting redaction; there is no
//     blanket bypass.
//   - Location and idle state are included only under the subject's
//     matching allow* flag; otherwise the field is omitted entirely so its
//     absence stays distinguishable from an empty value.
func (f *Filter) Apply(record domain.ActivityRecord, subject domain.PrivacyPolicy, viewer domain.Requester, scope domain.AccessScope) *domain.ActivityRecord {
	if record.SubjectID == viewer.ID {
		out := record.Clone()
		return &out
	}

	if viewer.Role == domain.RoleEmployee {
		return nil
	}

	out := record.Clone()

	if !subject.ShareDataWithManager {
		if scope == domain.ScopeTeam && viewer.Role == domain.RoleManager {
			out.WindowTitle = nil
			out.WebsiteURL = nil
			out.AppName = CategorizeApp(out.AppName)
		}
		if viewer.Role == domain.RoleAdmin || viewer.Role == domain.RoleSuperAdmin {
			out.WindowTitle = nil
			out.WebsiteURL = nil
		}
	}

	if !subject.AllowLocationTracking {
		out.Location = nil
	}
	if !subject.AllowIdleTracking {
		out.IsIdle = nil
	}
	if !subject.AllowScreenshots {
		out.ScreenshotRef = nil
	}
	if !subject.AllowWebsiteTracking {
		out.WebsiteURL = nil
	}

	return &out
}
