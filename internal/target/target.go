// Package target describes the processes the crash handler works against:
// the crashed process handed over by WER and, for subordinate crashes, the
// application's main process.
package target

import (
	"time"

	"github.com/agentsh/wercrash/internal/remotemem"
)

// Process is an open handle to another process.
type Process interface {
	remotemem.Memory

	// ID returns the process id behind the handle.
	ID() (uint32, error)
	// PEBAddress returns the address of the process environment block.
	PEBAddress() (remotemem.Address, error)
	// ImagePath returns the path of the main executable module.
	ImagePath() (string, error)
	// CreationTime returns the process creation time as a FILETIME tick
	// count (100ns intervals since 1601-01-01 UTC).
	CreationTime() (uint64, error)
	// CreateRemoteThread starts a thread inside the process at start, passing
	// param as its only argument.
	CreateRemoteThread(start, param remotemem.Address) (RemoteThread, error)
	// Terminate kills the process with the given exit code.
	Terminate(exitCode uint32) error
	Close() error
}

// Thread is a handle to a thread of the crashed process.
type Thread interface {
	ID() (uint32, error)
}

// RemoteThread is a thread this module started in another process.
type RemoteThread interface {
	// Wait blocks until the thread exits or timeout elapses.
	Wait(timeout time.Duration) error
	Close() error
}
