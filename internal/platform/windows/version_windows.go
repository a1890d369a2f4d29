//go:build windows

package windows

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/agentsh/wercrash/internal/minidump"
)

var procVerifyVersionInfoW = kernel32.NewProc("VerifyVersionInfoW")

type osVersionInfoEx struct {
	OSVersionInfoSize uint32
	MajorVersion      uint32
	MinorVersion      uint32
	BuildNumber       uint32
	PlatformID        uint32
	CSDVersion        [128]uint16
	ServicePackMajor  uint16
	ServicePackMinor  uint16
	SuiteMask         uint16
	ProductType       byte
	Reserved          byte
}

// AtLeast reports whether the running OS is at least v, the way
// VerifyVersionInfoW sees it.
func AtLeast(v minidump.Version) bool {
	info := osVersionInfoEx{
		MajorVersion:     v.Major,
		MinorVersion:     v.Minor,
		ServicePackMajor: v.ServicePackMajor,
		ServicePackMinor: v.ServicePackMinor,
	}
	info.OSVersionInfoSize = uint32(unsafe.Sizeof(info))
	return verifyVersionInfo(&info, minidump.TypeMask, minidump.ConditionMask())
}

// Windows8OrLater reports whether the OS is 6.2 SP0.0 or newer.
func Windows8OrLater() bool { return AtLeast(minidump.Windows8) }

// Version returns the running OS version as reported by RtlGetVersion,
// which unlike VerifyVersionInfoW ignores compatibility shims.
func Version() (minidump.Version, error) {
	v := windows.RtlGetVersion()
	return minidump.Version{
		Major:            v.MajorVersion,
		Minor:            v.MinorVersion,
		ServicePackMajor: v.ServicePackMajor,
		ServicePackMinor: v.ServicePackMinor,
	}, nil
}
