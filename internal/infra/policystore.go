package infra

import (
	"sync"

	"github.com/opspulse/workmon/internal/domain"
)

// DefaultPrivacyPolicy is the consent set assumed for subjects with no
// recorded policy: tracking categories on, sharing off. The read-time
// filter therefore redacts by default.
func DefaultPrivacyPolicy() domain.PrivacyPolicy {
	return domain.PrivacyPolicy{
		AllowScreenshots:      true,
		AllowLocationTracking: false,
		AllowAppTracking:      true,
		AllowWebsiteTracking:  true,
		AllowIdleTracking:     true,
		ShareDataWithManager:  false,
		ShareDataWithHR:       false,
	}
}

// MemoryPolicyStore implements domain.PolicyStore in memory with a
// default-consent fallback. Future: back with the policy service.
type MemoryPolicyStore struct {
	mu       sync.RWMutex
	policies map[string]domain.PrivacyPolicy
	fallback domain.PrivacyPolicy
}

// NewMemoryPolicyStore creates a store with the default fallback policy.
func NewMemoryPolicyStore() *MemoryPolicyStore {
	return &MemoryPolicyStore{
		policies: make(map[string]domain.PrivacyPolicy),
		fallback: DefaultPrivacyPolicy(),
	}
}

// SetPolicy records a subject's consent flags.
func (s *MemoryPolicyStore) SetPolicy(userID string, policy domain.PrivacyPolicy) {
	s.mu.Lock()
	s.policies[userID] = policy
	s.mu.Unlock()
}

// GetPolicy returns the subject's policy or the fallback.
func (s *MemoryPolicyStore) GetPolicy(userID string) domain.PrivacyPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.policies[userID]; ok {
		return p
	}
	return s.fallback
}

// Ensure MemoryPolicyStore implements domain.PolicyStore.
var _ domain.PolicyStore = (*MemoryPolicyStore)(nil)
