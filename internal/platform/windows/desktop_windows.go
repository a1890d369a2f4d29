//go:build windows

package windows

import (
	"sync"

	"golang.org/x/sys/windows"

	"github.com/agentsh/wercrash/internal/hang"
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	procIsHungAppWindow = user32.NewProc("IsHungAppWindow")
)

// Callbacks are a finite resource, so a single one serves every enumeration.
var (
	enumMu       sync.Mutex
	enumVisit    func(hang.Window) bool
	enumCallback = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		if enumVisit(hang.Window(hwnd)) {
			return 1
		}
		return 0
	})
)

// Desktop implements hang.Desktop over the current window station.
type Desktop struct{}

func (Desktop) EnumWindows(fn func(hang.Window) bool) error {
	enumMu.Lock()
	defer enumMu.Unlock()
	enumVisit = fn
	defer func() { enumVisit = nil }()
	return windows.EnumWindows(enumCallback, nil)
}

func (Desktop) WindowThreadProcessID(w hang.Window) (uint32, uint32) {
	var pid uint32
	tid, err := windows.GetWindowThreadProcessId(windows.HWND(w), &pid)
	if err != nil {
		return 0, 0
	}
	return tid, pid
}

func (Desktop) IsHungAppWindow(w hang.Window) bool {
	r, _, _ := procIsHungAppWindow.Call(uintptr(w))
	return r != 0
}
