package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opspulse/workmon/internal/domain"
)

// mockDirectory implements domain.Directory for testing
type mockDirectory struct {
	users       map[string]domain.UserRecord
	departments map[string][]string
	orgs        map[string][]string
	all         []string
}

func (m *mockDirectory) LookupUser(id string) (domain.UserRecord, bool) {
	u, ok := m.users[id]
	return u, ok
}

func (m *mockDirectory) UsersInDepartment(departmentID string) []string {
	return m.departments[departmentID]
}

func (m *mockDirectory) UsersInOrganization(orgID string) []string {
	return m.orgs[orgID]
}

func (m *mockDirectory) AllUsers() []string {
	return m.all
}

// testDirectory mirrors a two-org layout: org-1 has departments eng (e1, e2,
// m1) and sales (s1), org-2 has e9.
func testDirectory() *mockDirectory {
	return &mockDirectory{
		departments: map[string][]string{
			"eng":   {"e1", "e2", "m1"},
			"sales": {"s1"},
		},
		orgs: map[string][]string{
			"org-1": {"e1", "e2", "m1", "s1"},
			"org-2": {"e9"},
		},
		all: []string{"e1", "e2", "m1", "s1", "e9"},
	}
}

func requester(id string, role domain.Role, dept, org string) domain.Requester {
	return domain.Requester{ID: id, Role: role, DepartmentID: dept, OrganizationID: org}
}

func TestResolver_EmployeeSeesOnlySelf(t *testing.T) {
	r := NewResolver(testDirectory())
	emp := requester("e1", domain.RoleEmployee, "eng", "org-1")

	decision := r.Resolve(emp, "", "")
	require.True(t, decision.Allowed)
	assert.Equal(t, domain.ScopeSelf, decision.Scope)
	assert.Equal(t, []string{"e1"}, decision.TargetSet)

	decision = r.Resolve(emp, "e1", "")
	assert.True(t, decision.Allowed)
}

func TestResolver_EmployeeDeniedForPeerInSameDepartment(t *testing.T) {
	r := NewResolver(testDirectory())
	emp := requester("e1", domain.RoleEmployee, "eng", "org-1")

	decision := r.Resolve(emp, "e2", "")
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.ScopeSelf, decision.Scope)
	assert.Empty(t, decision.TargetSet)
}

func TestResolver_ManagerSeesTeam(t *testing.T) {
	r := NewResolver(testDirectory())
	mgr := requester("m1", domain.RoleManager, "eng", "org-1")

	decision := r.Resolve(mgr, "", "")
	require.True(t, decision.Allowed)
	assert.Equal(t, domain.ScopeTeam, decision.Scope)
	assert.ElementsMatch(t, []string{"e1", "e2", "m1"}, decision.TargetSet)

	decision = r.Resolve(mgr, "e2", "")
	require.True(t, decision.Allowed)
	assert.Equal(t, []string{"e2"}, decision.TargetSet)
}

func TestResolver_ManagerDeniedOutsideDepartment(t *testing.T) {
	r := NewResolver(testDirectory())
	mgr := requester("m1", domain.RoleManager, "eng", "org-1")

	decision := r.Resolve(mgr, "s1", "")
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.ScopeTeam, decision.Scope)
}

func TestResolver_AdminSeesOrganization(t *testing.T) {
	r := NewResolver(testDirectory())
	admin := requester("a1", domain.RoleAdmin, "", "org-1")

	decision := r.Resolve(admin, "", "")
	require.True(t, decision.Allowed)
	assert.Equal(t, domain.ScopeOrganization, decision.Scope)
	assert.ElementsMatch(t, []string{"e1", "e2", "m1", "s1"}, decision.TargetSet)

	decision = r.Resolve(admin, "s1", "")
	require.True(t, decision.Allowed)
	assert.Equal(t, domain.ScopeOrganization, decision.Scope)
}

func TestResolver_AdminDepartmentFilterNarrowsScope(t *testing.T) {
	r := NewResolver(testDirectory())
	admin := requester("a1", domain.RoleAdmin, "", "org-1")

	decision := r.Resolve(admin, "", "eng")
	require.True(t, decision.Allowed)
	assert.Equal(t, domain.ScopeDepartment, decision.Scope)
	assert.ElementsMatch(t, []string{"e1", "e2", "m1"}, decision.TargetSet)
}

func TestResolver_AdminDeniedOutsideOrganization(t *testing.T) {
	r := NewResolver(testDirectory())
	admin := requester("a1", domain.RoleAdmin, "", "org-1")

	decision := r.Resolve(admin, "e9", "")
	assert.False(t, decision.Allowed)
}

func TestResolver_SuperAdminSeesEverything(t *testing.T) {
	r := NewResolver(testDirectory())
	root := requester("root", domain.RoleSuperAdmin, "", "")

	decision := r.Resolve(root, "", "")
	require.True(t, decision.Allowed)
	assert.Equal(t, domain.ScopeAll, decision.Scope)
	assert.Len(t, decision.TargetSet, 5)

	decision = r.Resolve(root, "e9", "")
	require.True(t, decision.Allowed)
	assert.Equal(t, []string{"e9"}, decision.TargetSet)
}

func TestResolver_UnknownRoleDenied(t *testing.T) {
	r := NewResolver(testDirectory())

	decision := r.Resolve(domain.Requester{ID: "x", Role: "contractor"}, "", "")
	assert.False(t, decision.Allowed)
	assert.Empty(t, decision.TargetSet)
}
