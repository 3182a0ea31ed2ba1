package infra

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/opspulse/workmon/internal/domain"
)

// ProcessResolverImpl implements domain.ProcessResolver using gopsutil for
// cross-platform support. Focus events carry only a PID from the platform
// hook; this resolver turns it into an application identity.
type ProcessResolverImpl struct{}

// NewProcessResolver creates a gopsutil-backed process resolver.
func NewProcessResolver() domain.ProcessResolver {
	return &ProcessResolverImpl{}
}

// AppInfo returns the process name and executable path for a PID.
func (r *ProcessResolverImpl) AppInfo(pid int) (string, string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", "", fmt.Errorf("process %d: %w", pid, err)
	}

	name, err := p.Name()
	if err != nil {
		return "", "", fmt.Errorf("process %d name: %w", pid, err)
	}

	// Exe can fail for system processes; the name alone is still useful.
	exe, err := p.Exe()
	if err != nil {
		return name, "", nil
	}
	return name, exe, nil
}

// Ensure ProcessResolverImpl implements domain.ProcessResolver.
var _ domain.ProcessResolver = (*ProcessResolverImpl)(nil)
