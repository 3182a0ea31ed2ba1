package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/opspulse/workmon/internal/domain"
)

// MemoryDirectory implements domain.Directory from an in-memory user set.
// Seeded from a JSON file or programmatically; read-only after load, so
// lookups are safe for concurrent resolvers.
// Future: replace with a directory-service client.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]domain.UserRecord
}

// NewMemoryDirectory creates a directory over the given users.
func NewMemoryDirectory(users []domain.UserRecord) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[string]domain.UserRecord, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// LoadDirectory reads a JSON array of user records from disk.
func LoadDirectory(path string) (*MemoryDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory seed: %w", err)
	}
	var users []struct {
		ID             string `json:"id"`
		Role           string `json:"role"`
		DepartmentID   string `json:"departmentId"`
		OrganizationID string `json:"organizationId"`
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse directory seed: %w", err)
	}

	records := make([]domain.UserRecord, 0, len(users))
	for _, u := range users {
		role := domain.Role(u.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("user %q has unknown role %q", u.ID, u.Role)
		}
		records = append(records, domain.UserRecord{
			ID:             u.ID,
			Role:           role,
			DepartmentID:   u.DepartmentID,
			OrganizationID: u.OrganizationID,
		})
	}
	return NewMemoryDirectory(records), nil
}

// LookupUser resolves a user's role and org placement.
func (d *MemoryDirectory) LookupUser(id string) (domain.UserRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	return u, ok
}

// UsersInDepartment returns all user IDs in a department, sorted.
func (d *MemoryDirectory) UsersInDepartment(departmentID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	for _, u := range d.users {
		if u.DepartmentID == departmentID {
			out = append(out, u.ID)
		}
	}
	sort.Strings(out)
	return out
}

// UsersInOrganization returns all user IDs in an organization, sorted.
func (d *MemoryDirectory) UsersInOrganization(organizationID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	for _, u := range d.users {
		if u.OrganizationID == organizationID {
			out = append(out, u.ID)
		}
	}
	sort.Strings(out)
	return out
}

// AllUsers returns every known user ID, sorted.
func (d *MemoryDirectory) AllUsers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.users))
	for id := range d.users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Ensure MemoryDirectory implements domain.Directory.
var _ domain.Directory = (*MemoryDirectory)(nil)
