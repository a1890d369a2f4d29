// Package handoff implements the subordinate side of the crash hand-off: a
// crashed subordinate process tells the application's main process about its
// dump by updating a SharedCrashState in the main process and running the
// main process's notification routine there.
//
// A subordinate is started with a command line ending in
//
//	... <parent pid> <token> <shared state address>
//
// where the pid is decimal and the address hexadecimal.
package handoff

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentsh/wercrash/internal/procparams"
	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/target"
	"github.com/agentsh/wercrash/internal/winlayout"
)

// DefaultTimeout bounds the wait for the main process's notification routine.
const DefaultTimeout = 5 * time.Second

var ErrMalformedCommandLine = errors.New("handoff: malformed subordinate command line")

// Parent identifies the main process and its shared state slot.
type Parent struct {
	PID         uint32            `json:"pid"`
	SharedState remotemem.Address `json:"shared_state"`
}

// ParseChildCommandLine extracts the parent pid (third token from the end)
// and the shared state address (last token).
func ParseChildCommandLine(cmdLine string) (Parent, error) {
	fields := strings.Fields(cmdLine)
	if len(fields) < 3 {
		return Parent{}, fmt.Errorf("%w: %d tokens", ErrMalformedCommandLine, len(fields))
	}
	addrTok := fields[len(fields)-1]
	addrTok = strings.TrimPrefix(strings.TrimPrefix(addrTok, "0x"), "0X")
	addr, err := strconv.ParseUint(addrTok, 16, strconv.IntSize)
	if err != nil {
		return Parent{}, fmt.Errorf("%w: address: %v", ErrMalformedCommandLine, err)
	}
	pid, err := strconv.ParseUint(fields[len(fields)-3], 10, 32)
	if err != nil {
		return Parent{}, fmt.Errorf("%w: pid: %v", ErrMalformedCommandLine, err)
	}
	return Parent{PID: uint32(pid), SharedState: remotemem.Address(addr)}, nil
}

// Opener opens a process by id with full access.
type Opener interface {
	OpenProcess(pid uint32) (target.Process, error)
}

// Result is what the subordinate reports to the main process.
type Result struct {
	DumpName          [winlayout.DumpNameSize]byte
	OOMAllocationSize uint64
}

// Notifier delivers a subordinate crash to the main process.
type Notifier struct {
	Opener  Opener
	Timeout time.Duration
}

// Notify runs the hand-off for child. Every step is mandatory; the shared
// state is only written once the parent has been opened and read.
func (n *Notifier) Notify(ctx context.Context, child target.Process, res Result) error {
	cmdLine, err := procparams.CommandLine(child)
	if err != nil {
		return fmt.Errorf("read subordinate command line: %w", err)
	}
	parent, err := ParseChildCommandLine(cmdLine)
	if err != nil {
		return err
	}
	childPID, err := child.ID()
	if err != nil {
		return fmt.Errorf("subordinate pid: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	proc, err := n.Opener.OpenProcess(parent.PID)
	if err != nil {
		return fmt.Errorf("OpenProcess(%d): %w", parent.PID, err)
	}
	defer proc.Close()

	state, err := remotemem.Read[winlayout.SharedCrashState](proc, parent.SharedState)
	if err != nil {
		return fmt.Errorf("read shared crash state: %w", err)
	}
	state.ChildPID = childPID
	state.DumpName = res.DumpName
	state.OOMAllocationSize = uintptr(res.OOMAllocationSize)
	if err := remotemem.Write(proc, state, parent.SharedState); err != nil {
		return fmt.Errorf("write shared crash state: %w", err)
	}

	return notifyParent(proc, state.NotifyProc, parent.SharedState, n.timeout())
}

func (n *Notifier) timeout() time.Duration {
	if n.Timeout <= 0 {
		return DefaultTimeout
	}
	return n.Timeout
}

// notifyParent runs the parent's notification routine and waits for it. The
// thread is never cancelled; an expired wait fails the hand-off.
func notifyParent(proc target.Process, entry, param remotemem.Address, timeout time.Duration) error {
	th, err := proc.CreateRemoteThread(entry, param)
	if err != nil {
		return fmt.Errorf("CreateRemoteThread: %w", err)
	}
	defer th.Close()
	if err := th.Wait(timeout); err != nil {
		return fmt.Errorf("wait for notification: %w", err)
	}
	return nil
}
