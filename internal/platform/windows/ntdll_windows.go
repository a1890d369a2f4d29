// internal/platform/windows/ntdll_windows.go
//go:build windows

package windows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/agentsh/wercrash/internal/remotemem"
)

var (
	ntdll                         = windows.NewLazySystemDLL("ntdll.dll")
	procNtQueryInformationProcess = ntdll.NewProc("NtQueryInformationProcess")
)

const processBasicInformationClass = 0

type processBasicInformation struct {
	ExitStatus                   uintptr
	PebBaseAddress               uintptr
	AffinityMask                 uintptr
	BasePriority                 uintptr
	UniqueProcessID              uintptr
	InheritedFromUniqueProcessID uintptr
}

// queryPEBAddress returns the address of the PEB of the process behind h.
func queryPEBAddress(h windows.Handle) (remotemem.Address, error) {
	var pbi processBasicInformation
	var retLen uint32
	r, _, _ := procNtQueryInformationProcess.Call(
		uintptr(h),
		processBasicInformationClass,
		uintptr(unsafe.Pointer(&pbi)),
		unsafe.Sizeof(pbi),
		uintptr(unsafe.Pointer(&retLen)),
	)
	if r != 0 {
		return 0, fmt.Errorf("NtQueryInformationProcess: NTSTATUS 0x%08X", r)
	}
	if pbi.PebBaseAddress == 0 {
		return 0, fmt.Errorf("NtQueryInformationProcess: no PEB")
	}
	return remotemem.Address(pbi.PebBaseAddress), nil
}
