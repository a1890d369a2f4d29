//go:build windows

package windows

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/target"
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procCreateRemoteThread      = kernel32.NewProc("CreateRemoteThread")
	procK32GetModuleFileNameExW = kernel32.NewProc("K32GetModuleFileNameExW")
	procGetThreadID             = kernel32.NewProc("GetThreadId")
	procGetThreadContext        = kernel32.NewProc("GetThreadContext")
)

// ErrPathTruncated is returned when the image path does not fit MAX_PATH.
var ErrPathTruncated = errors.New("image path truncated")

// Process is a process handle. Handles received from WER are borrowed and
// not closed.
type Process struct {
	h     windows.Handle
	owned bool
}

var _ target.Process = (*Process)(nil)

// BorrowProcess wraps a handle owned by someone else.
func BorrowProcess(h windows.Handle) *Process { return &Process{h: h} }

// OpenProcess opens pid with full access.
func OpenProcess(pid uint32) (*Process, error) {
	h, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, pid)
	if err != nil {
		return nil, fmt.Errorf("OpenProcess(%d): %w", pid, err)
	}
	return &Process{h: h, owned: true}, nil
}

func (p *Process) Handle() windows.Handle { return p.h }

func (p *Process) ReadMemory(addr remotemem.Address, dst []byte) (int, error) {
	if p == nil || p.h == 0 {
		return 0, remotemem.ErrInvalidProcess
	}
	if len(dst) == 0 {
		return 0, nil
	}
	var n uintptr
	err := windows.ReadProcessMemory(p.h, uintptr(addr), &dst[0], uintptr(len(dst)), &n)
	return int(n), err
}

func (p *Process) WriteMemory(addr remotemem.Address, src []byte) (int, error) {
	if p == nil || p.h == 0 {
		return 0, remotemem.ErrInvalidProcess
	}
	if len(src) == 0 {
		return 0, nil
	}
	var n uintptr
	err := windows.WriteProcessMemory(p.h, uintptr(addr), &src[0], uintptr(len(src)), &n)
	return int(n), err
}

func (p *Process) ID() (uint32, error) {
	pid, err := windows.GetProcessId(p.h)
	if err != nil {
		return 0, fmt.Errorf("GetProcessId: %w", err)
	}
	return pid, nil
}

func (p *Process) PEBAddress() (remotemem.Address, error) {
	return queryPEBAddress(p.h)
}

// ImagePath returns the main module path, bounded to MAX_PATH characters.
func (p *Process) ImagePath() (string, error) {
	var buf [windows.MAX_PATH]uint16
	r, _, err := procK32GetModuleFileNameExW.Call(uintptr(p.h), 0, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return "", fmt.Errorf("GetModuleFileNameEx: %w", err)
	}
	if r >= uintptr(len(buf)) {
		return "", ErrPathTruncated
	}
	return windows.UTF16ToString(buf[:r]), nil
}

func (p *Process) CreationTime() (uint64, error) {
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(p.h, &creation, &exit, &kernel, &user); err != nil {
		return 0, fmt.Errorf("GetProcessTimes: %w", err)
	}
	return uint64(creation.HighDateTime)<<32 | uint64(creation.LowDateTime), nil
}

func (p *Process) CreateRemoteThread(start, param remotemem.Address) (target.RemoteThread, error) {
	r, _, err := procCreateRemoteThread.Call(uintptr(p.h), 0, 0, uintptr(start), uintptr(param), 0, 0)
	if r == 0 {
		return nil, fmt.Errorf("CreateRemoteThread: %w", err)
	}
	return &remoteThread{h: windows.Handle(r)}, nil
}

func (p *Process) Terminate(exitCode uint32) error {
	if err := windows.TerminateProcess(p.h, exitCode); err != nil {
		return fmt.Errorf("TerminateProcess: %w", err)
	}
	return nil
}

func (p *Process) Close() error {
	if !p.owned || p.h == 0 {
		return nil
	}
	err := windows.CloseHandle(p.h)
	p.h = 0
	return err
}

type remoteThread struct {
	h windows.Handle
}

func (t *remoteThread) Wait(timeout time.Duration) error {
	ev, err := windows.WaitForSingleObject(t.h, uint32(timeout.Milliseconds()))
	if err != nil {
		return fmt.Errorf("WaitForSingleObject: %w", err)
	}
	if ev != windows.WAIT_OBJECT_0 {
		return fmt.Errorf("WaitForSingleObject: wait result 0x%X after %s", ev, timeout)
	}
	return nil
}

func (t *remoteThread) Close() error { return windows.CloseHandle(t.h) }

// Thread is a thread handle.
type Thread struct {
	h windows.Handle
}

func (t Thread) ID() (uint32, error) {
	return threadID(t.h)
}

func threadID(h windows.Handle) (uint32, error) {
	r, _, err := procGetThreadID.Call(uintptr(h))
	if r == 0 {
		return 0, fmt.Errorf("GetThreadId: %w", err)
	}
	return uint32(r), nil
}
