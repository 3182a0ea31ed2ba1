// Package usecase contains application business logic: access-scope
// resolution, privacy filtering, and the activity query service.
package usecase

import (
	"github.com/opspulse/workmon/internal/domain"
)

// Resolver maps a requester's role and org placement to the set of users
// whose data they may view. It is pure given the directory collaborator:
// no mutation, no hidden state, safe for concurrent use.
type Resolver struct {
	dir domain.Directory
}

// NewResolver creates a resolver over a read-only directory.
func NewResolver(dir domain.Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve computes the access decision for an optional target user. An
// empty target means "everything my scope allows". departmentFilter only
// matters for admins, narrowing the scope label from organization to
// department. Denial is a value in the decision, never an error.
//
// Target sets are monotonic in role rank: each rule below yields a subset
// of the next rank's set within the same organizational unit.
func (r *Resolver) Resolve(req domain.Requester, targetID string, departmentFilter string) domain.AccessDecision {
	switch req.Role {
	case domain.RoleEmployee:
		// Employees only ever see themselves.
		if targetID != "" && targetID != req.ID {
			return domain.AccessDecision{Scope: domain.ScopeSelf}
		}
		return domain.AccessDecision{
			Allowed:   true,
			Scope:     domain.ScopeSelf,
			TargetSet: []string{req.ID},
		}

	case domain.RoleManager:
		team := r.dir.UsersInDepartment(req.DepartmentID)
		if targetID != "" && !contains(team, targetID) {
			return domain.AccessDecision{Scope: domain.ScopeTeam}
		}
		if targetID != "" {
			return domain.AccessDecision{Allowed: true, Scope: domain.ScopeTeam, TargetSet: []string{targetID}}
		}
		return domain.AccessDecision{Allowed: true, Scope: domain.ScopeTeam, TargetSet: team}

	case domain.RoleAdmin:
		org := r.dir.UsersInOrganization(req.OrganizationID)
		scope := domain.ScopeOrganization
		set := org
		if departmentFilter != "" {
			scope = domain.ScopeDepartment
			set = intersect(org, r.dir.UsersInDepartment(departmentFilter))
		}
		if targetID != "" && !contains(org, targetID) {
			return domain.AccessDecision{Scope: scope}
		}
		if targetID != "" {
			return domain.AccessDecision{Allowed: true, Scope: scope, TargetSet: []string{targetID}}
		}
		return domain.AccessDecision{Allowed: true, Scope: scope, TargetSet: set}

	case domain.RoleSuperAdmin:
		if targetID != "" {
			return domain.AccessDecision{Allowed: true, Scope: domain.ScopeAll, TargetSet: []string{targetID}}
		}
		return domain.AccessDecision{Allowed: true, Scope: domain.ScopeAll, TargetSet: r.dir.AllUsers()}
	}

	// Unknown role: deny.
	return domain.AccessDecision{}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
