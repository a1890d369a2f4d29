package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/agentsh/wercrash/internal/appinfo"
)

const (
	// filetimeTicksPerSecond is the FILETIME resolution (100ns ticks).
	filetimeTicksPerSecond = 10_000_000
	// filetimeUnixEpochSeconds is the number of seconds between 1601-01-01
	// and 1970-01-01 UTC.
	filetimeUnixEpochSeconds = 11_644_473_600
)

// FiletimeToUnix converts a FILETIME tick count to seconds since the Unix
// epoch. Times before 1970 clamp to zero.
func FiletimeToUnix(ticks uint64) uint64 {
	secs := ticks / filetimeTicksPerSecond
	if secs < filetimeUnixEpochSeconds {
		return 0
	}
	return secs - filetimeUnixEpochSeconds
}

// Builder creates crash reports. The zero value uses the wall clock and
// random v4 UUIDs.
type Builder struct {
	Now   func() time.Time
	NewID func() string
}

// Build assembles a crash report for one event. startupTime is in seconds
// since the Unix epoch.
func (b Builder) Build(info *appinfo.Information, startupTime, oomAllocationSize uint64, uiHang bool) *CrashReport {
	now := b.Now
	if now == nil {
		now = time.Now
	}
	newID := b.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}

	crashTime := uint64(now().Unix())
	return &CrashReport{
		ID:                newID(),
		Dir:               info.CrashReportsDir,
		Channel:           info.ReleaseChannel,
		Annotations:       NewAnnotations(info, crashTime, startupTime, oomAllocationSize, uiHang),
		CrashTime:         crashTime,
		OOMAllocationSize: oomAllocationSize,
	}
}
