//go:build windows

package windows

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/agentsh/wercrash/internal/minidump"
	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/target"
	"github.com/agentsh/wercrash/internal/wer"
)

const (
	threadGetContext              = 0x0008
	threadQueryLimitedInformation = 0x0800
)

var errForeignEvent = errors.New("event was not created by this package")

// nativeEvent is the Native payload of events built by NewEvent.
type nativeEvent struct {
	info    *RuntimeExceptionInformation
	handles []windows.Handle
}

// NewEvent wraps the information WER passes to the exception callback. The
// event borrows every handle in info; Release closes what the handler opened
// on top of them.
func NewEvent(registrationContext uintptr, info *RuntimeExceptionInformation) *wer.Event {
	return &wer.Event{
		Process:       BorrowProcess(info.Process),
		Thread:        Thread{h: info.Thread},
		ExceptionCode: info.ExceptionRecord.Code,
		Fatal:         info.IsFatal != 0,
		Context:       remotemem.Address(registrationContext),
		Native:        &nativeEvent{info: info},
	}
}

// Release closes handles opened while handling ev.
func Release(ev *wer.Event) {
	ne, ok := ev.Native.(*nativeEvent)
	if !ok {
		return
	}
	for _, h := range ne.handles {
		windows.CloseHandle(h)
	}
	ne.handles = nil
}

func native(ev *wer.Event) (*nativeEvent, error) {
	ne, ok := ev.Native.(*nativeEvent)
	if !ok || ne.info == nil {
		return nil, errForeignEvent
	}
	return ne, nil
}

// System implements wer.System on the live OS.
type System struct {
	Desktop
}

var _ wer.System = System{}

func (System) RoamingAppData() (string, error) {
	return RoamingAppData()
}

func (System) OpenProcess(pid uint32) (target.Process, error) {
	p, err := OpenProcess(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CaptureThread points the event at threadID: its handle replaces the
// event's thread and its current context overwrites the exception context.
func (System) CaptureThread(ev *wer.Event, threadID uint32) error {
	ne, err := native(ev)
	if err != nil {
		return err
	}
	h, err := windows.OpenThread(threadGetContext|threadQueryLimitedInformation, false, threadID)
	if err != nil {
		return fmt.Errorf("OpenThread(%d): %w", threadID, err)
	}
	r, _, callErr := procGetThreadContext.Call(uintptr(h), uintptr(unsafe.Pointer(&ne.info.Context[0])))
	if r == 0 {
		windows.CloseHandle(h)
		return fmt.Errorf("GetThreadContext: %w", callErr)
	}
	ne.handles = append(ne.handles, h)
	ne.info.Thread = h
	ev.Thread = Thread{h: h}
	return nil
}

func (System) WriteMinidump(ev *wer.Event, f *os.File, flags minidump.Type) error {
	ne, err := native(ev)
	if err != nil {
		return err
	}
	return writeMinidump(ne.info, f, flags)
}

func (System) Windows8OrLater() bool { return Windows8OrLater() }

func (System) LaunchProcess(cmdLine string, env []uint16) error {
	return LaunchDetached(cmdLine, env)
}

// RoamingAppData returns the user's roaming application data folder.
func RoamingAppData() (string, error) {
	path, err := windows.KnownFolderPath(windows.FOLDERID_RoamingAppData, windows.KF_FLAG_DEFAULT)
	if err != nil {
		return "", fmt.Errorf("KnownFolderPath(RoamingAppData): %w", err)
	}
	return path, nil
}
