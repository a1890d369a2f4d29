//go:build windows

package windows

import (
	"golang.org/x/sys/windows"
)

// ExceptionRecord mirrors EXCEPTION_RECORD.
type ExceptionRecord struct {
	Code             uint32
	Flags            uint32
	Record           uintptr
	Address          uintptr
	NumberParameters uint32
	Information      [15]uintptr
}

// RuntimeExceptionInformation mirrors WER_RUNTIME_EXCEPTION_INFORMATION. The
// CONTEXT record is kept as raw bytes; its size depends on the architecture.
type RuntimeExceptionInformation struct {
	Size            uint32
	Process         windows.Handle
	Thread          windows.Handle
	ExceptionRecord ExceptionRecord
	Context         [contextSize]byte
	ReportID        *uint16
	IsFatal         int32
	Reserved        uint32
}
