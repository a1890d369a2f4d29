// internal/platform/windows/system_stub.go
//go:build !windows

package windows

import (
	"errors"
	"fmt"

	"github.com/agentsh/wercrash/internal/minidump"
	"github.com/agentsh/wercrash/internal/target"
)

var errNotAvailable = errors.New("not available on this platform")

// RegisterModule is only available on Windows.
func RegisterModule(scope Scope, dllPath string) error {
	return fmt.Errorf("RegisterModule: %w", errNotAvailable)
}

// UnregisterModule is only available on Windows.
func UnregisterModule(scope Scope, dllPath string) error {
	return fmt.Errorf("UnregisterModule: %w", errNotAvailable)
}

// RegisteredModules is only available on Windows.
func RegisteredModules(scope Scope) ([]string, error) {
	return nil, fmt.Errorf("RegisteredModules: %w", errNotAvailable)
}

// OpenProcess is only available on Windows.
func OpenProcess(pid uint32) (target.Process, error) {
	return nil, fmt.Errorf("OpenProcess(%d): %w", pid, errNotAvailable)
}

// Version is only available on Windows.
func Version() (minidump.Version, error) {
	return minidump.Version{}, fmt.Errorf("Version: %w", errNotAvailable)
}

// Windows8OrLater is false off Windows.
func Windows8OrLater() bool { return false }

// RoamingAppData is only available on Windows.
func RoamingAppData() (string, error) {
	return "", fmt.Errorf("RoamingAppData: %w", errNotAvailable)
}
