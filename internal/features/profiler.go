// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package features

// DeviceProfile is the running behavior of one client.
type DeviceProfile struct {
	TotalQueries int64
	AvgEntropy   float64
	SeenTLDs     map[string]struct{}
}

// DeviceProfiler tracks per-client query counts, mean entropy and the TLDs
// each client has resolved. Profiles are created on first sight and live for
// the lifetime of the profiler.
type DeviceProfiler struct {
	profiles map[string]*DeviceProfile
}

// NewDeviceProfiler returns an empty profiler.
func NewDeviceProfiler() *DeviceProfiler {
	return &DeviceProfiler{profiles: make(map[string]*DeviceProfile)}
}

// Update folds one query into the client's profile and reports whether tld
// had not been seen for that client before. The empty TLD is tracked like
// any other value.
func (p *DeviceProfiler) Update(client, tld string, entropy float64) bool {
	prof, ok := p.profiles[client]
	if !ok {
		prof = &DeviceProfile{SeenTLDs: make(map[string]struct{})}
		p.profiles[client] = prof
	}

	prof.TotalQueries++
	prof.AvgEntropy += (entropy - prof.AvgEntropy) / float64(prof.TotalQueries)

	_, seen := prof.SeenTLDs[tld]
	prof.SeenTLDs[tld] = struct{}{}
	return !seen
}

// Profile returns a copy of the client's profile.
func (p *DeviceProfiler) Profile(client string) (DeviceProfile, bool) {
	prof, ok := p.profiles[client]
	if !ok {
		return DeviceProfile{}, false
	}
	out := DeviceProfile{
		TotalQueries: prof.TotalQueries,
		AvgEntropy:   prof.AvgEntropy,
		SeenTLDs:     make(map[string]struct{}, len(prof.SeenTLDs)),
	}
	for k := range prof.SeenTLDs {
		out.SeenTLDs[k] = struct{}{}
	}
	return out, true
}

// Len is the number of profiled clients.
func (p *DeviceProfiler) Len() int {
	return len(p.profiles)
}
