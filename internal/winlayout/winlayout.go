// Package winlayout holds the byte layouts shared with other processes: the
// crash hand-off structures the application keeps in its own memory, and the
// partially undocumented process-parameter block read out of the PEB.
//
// Every layout here mirrors a native structure at the pointer width of the
// running binary. The undocumented tail of UserProcessParameters is known to
// be correct for Windows 7 through Windows 11 24H2; a layout revision should
// only ever touch this package.
package winlayout

import (
	"github.com/agentsh/wercrash/internal/remotemem"
)

// MainProcessType is the process-role tag of the application's main process.
const MainProcessType uint32 = 0

// ExceptionBreakpoint is STATUS_BREAKPOINT, which WER raises for UI hangs.
const ExceptionBreakpoint uint32 = 0x80000003

// DumpNameSize is the fixed size of SharedCrashState.DumpName.
const DumpNameSize = 40

// SharedCrashState is the per-subordinate slot the main process allocates in
// its own address space. The field order and natural alignment must match the
// application's definition exactly.
type SharedCrashState struct {
	NotifyProc        remotemem.Address
	ChildPID          uint32
	DumpName          [DumpNameSize]byte
	OOMAllocationSize uintptr
}

// InProcessCrashContext lives in every application process; its address is
// handed to the module when the process registers with WER.
type InProcessCrashContext struct {
	ProcessType          uint32
	OOMAllocationSizePtr remotemem.Address
}

// IsMainProcess reports whether the context belongs to the main process.
func (c InProcessCrashContext) IsMainProcess() bool {
	return c.ProcessType == MainProcessType
}

// UnicodeString mirrors UNICODE_STRING. Length is in bytes.
type UnicodeString struct {
	Length        uint16
	MaximumLength uint16
	Buffer        remotemem.Address
}

// String mirrors the ANSI STRING, which shares UNICODE_STRING's layout.
type String UnicodeString

// PEB is the documented prefix of the process environment block, up to and
// including ProcessParameters (offset 0x20 on 64-bit, 0x10 on 32-bit).
type PEB struct {
	Reserved1         [2]byte
	BeingDebugged     byte
	Reserved2         [1]byte
	Reserved3         [2]uintptr
	Ldr               remotemem.Address
	ProcessParameters remotemem.Address
}

// DriveLetterCurDir mirrors RTL_DRIVE_LETTER_CURDIR.
type DriveLetterCurDir struct {
	Flags     uint16
	Length    uint16
	TimeStamp uint32
	DosPath   String
}

// UserProcessParameters mirrors RTL_USER_PROCESS_PARAMETERS. Everything after
// CommandLine is undocumented.
type UserProcessParameters struct {
	Reserved1     [16]byte
	Reserved2     [10]uintptr
	ImagePathName UnicodeString
	CommandLine   UnicodeString

	Environment        remotemem.Address
	StartingX          uint32
	StartingY          uint32
	CountX             uint32
	CountY             uint32
	CountCharsX        uint32
	CountCharsY        uint32
	FillAttribute      uint32
	WindowFlags        uint32
	ShowWindowFlags    uint32
	WindowTitle        UnicodeString
	DesktopInfo        UnicodeString
	ShellInfo          UnicodeString
	RuntimeData        UnicodeString
	CurrentDirectories [32]DriveLetterCurDir
	EnvironmentSize    uint32
}
