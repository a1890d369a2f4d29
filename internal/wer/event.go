// Package wer turns one Windows Error Reporting runtime exception event into a
// crash report: it recognises UI hangs, resolves the crashed application,
// writes the minidump and then either launches the reporting client (main
// process) or hands the dump to the main process (subordinate process).
package wer

import (
	"os"

	"github.com/agentsh/wercrash/internal/appinfo"
	"github.com/agentsh/wercrash/internal/handoff"
	"github.com/agentsh/wercrash/internal/hang"
	"github.com/agentsh/wercrash/internal/minidump"
	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/target"
)

// Event is one runtime exception event as delivered by WER.
type Event struct {
	Process       target.Process
	Thread        target.Thread
	ExceptionCode uint32
	Fatal         bool
	// UIHang is set once the event has been recognised as a UI hang.
	UIHang bool
	// Context is the address of the InProcessCrashContext the crashed
	// process registered with WER.
	Context remotemem.Address
	// Native carries the OS binding's view of the event (exception record
	// and thread context). It is opaque to this package.
	Native any
}

// System is the operating system as seen by the handler.
type System interface {
	hang.Desktop
	appinfo.Folders
	handoff.Opener

	// CaptureThread makes the thread threadID of ev.Process the event's
	// thread, replacing the event's thread context with its current one.
	CaptureThread(ev *Event, threadID uint32) error
	// WriteMinidump dumps ev.Process into f.
	WriteMinidump(ev *Event, f *os.File, flags minidump.Type) error
	// Windows8OrLater reports whether the OS is at least 6.2 SP 0.0.
	Windows8OrLater() bool
	// LaunchProcess starts cmdLine detached, with env as its UTF-16
	// environment block.
	LaunchProcess(cmdLine string, env []uint16) error
}

// eventTarget adapts an event to minidump.Target.
type eventTarget struct {
	sys System
	ev  *Event
}

func (t eventTarget) WriteMinidump(f *os.File, flags minidump.Type) error {
	return t.sys.WriteMinidump(t.ev, f, flags)
}
