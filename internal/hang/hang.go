// Package hang recognises WER reports that are UI hangs rather than crashes.
//
// WER signals a hang with a non-fatal breakpoint exception whose thread and
// context may be unrelated to the hung thread, so the thread that owns the
// hung top-level window is recovered instead.
package hang

import (
	"errors"

	"github.com/agentsh/wercrash/internal/winlayout"
)

// ErrNoHungWindow is returned when the process owns no hung top-level window.
var ErrNoHungWindow = errors.New("hang: no hung window")

// Window is an opaque top-level window handle.
type Window uintptr

// Desktop enumerates top-level windows.
type Desktop interface {
	// EnumWindows calls fn for each top-level window until fn returns false.
	EnumWindows(fn func(Window) bool) error
	// WindowThreadProcessID returns the owning thread and process of w. A
	// zero thread id means the window is gone.
	WindowThreadProcessID(w Window) (threadID, processID uint32)
	// IsHungAppWindow reports whether the OS considers w unresponsive.
	IsHungAppWindow(w Window) bool
}

// Applies reports whether an event is a hang candidate at all.
func Applies(fatal bool, exceptionCode uint32) bool {
	return !fatal && exceptionCode == winlayout.ExceptionBreakpoint
}

// FindHungWindowThread returns the id of the thread that owns the first hung
// top-level window of process pid, in enumeration order.
func FindHungWindowThread(d Desktop, pid uint32) (uint32, error) {
	var found uint32
	// The enumeration result is irrelevant; only whether a window matched.
	_ = d.EnumWindows(func(w Window) bool {
		tid, owner := d.WindowThreadProcessID(w)
		if tid != 0 && owner == pid && d.IsHungAppWindow(w) {
			found = tid
			return false
		}
		return true
	})
	if found == 0 {
		return 0, ErrNoHungWindow
	}
	return found, nil
}
