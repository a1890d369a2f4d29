//go:build windows

package windows

import (
	"encoding/binary"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/agentsh/wercrash/internal/minidump"
)

var (
	dbghelp               = windows.NewLazySystemDLL("dbghelp.dll")
	procMiniDumpWriteDump = dbghelp.NewProc("MiniDumpWriteDump")
)

type exceptionPointers struct {
	ExceptionRecord *ExceptionRecord
	ContextRecord   unsafe.Pointer
}

// MINIDUMP_EXCEPTION_INFORMATION is declared with 4-byte packing, which a Go
// struct cannot express on 64-bit targets.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

type minidumpExceptionInformation [4 + ptrSize + 4]byte

func newMinidumpExceptionInformation(threadID uint32, ep *exceptionPointers) minidumpExceptionInformation {
	var mei minidumpExceptionInformation
	binary.LittleEndian.PutUint32(mei[0:], threadID)
	p := uint64(uintptr(unsafe.Pointer(ep)))
	if ptrSize == 8 {
		binary.LittleEndian.PutUint64(mei[4:], p)
	} else {
		binary.LittleEndian.PutUint32(mei[4:], uint32(p))
	}
	// ClientPointers = FALSE: the pointers are in this process.
	binary.LittleEndian.PutUint32(mei[4+ptrSize:], 0)
	return mei
}

// writeMinidump dumps the crashed process described by info into f, using
// info's thread and context as the exception.
func writeMinidump(info *RuntimeExceptionInformation, f *os.File, flags minidump.Type) error {
	pid, err := windows.GetProcessId(info.Process)
	if err != nil {
		return fmt.Errorf("GetProcessId: %w", err)
	}
	tid, err := threadID(info.Thread)
	if err != nil {
		return err
	}

	ep := &exceptionPointers{
		ExceptionRecord: &info.ExceptionRecord,
		ContextRecord:   unsafe.Pointer(&info.Context[0]),
	}
	var pinner runtime.Pinner
	pinner.Pin(ep)
	defer pinner.Unpin()
	mei := newMinidumpExceptionInformation(tid, ep)

	r, _, callErr := procMiniDumpWriteDump.Call(
		uintptr(info.Process),
		uintptr(pid),
		f.Fd(),
		uintptr(flags),
		uintptr(unsafe.Pointer(&mei[0])),
		0, // user streams
		0, // callback
	)
	runtime.KeepAlive(ep)
	if r == 0 {
		return fmt.Errorf("MiniDumpWriteDump: %w", callErr)
	}
	return nil
}
