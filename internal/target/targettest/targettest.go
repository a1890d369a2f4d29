// Package targettest provides in-memory stand-ins for target processes.
package targettest

import (
	"errors"
	"sync"
	"time"

	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/target"
)

var ErrNotConfigured = errors.New("targettest: not configured")

// Process is a fake target.Process backed by a remotemem.FakeMemory.
type Process struct {
	*remotemem.FakeMemory

	PID      uint32
	PEB      remotemem.Address
	Image    string
	Created  uint64
	ImageErr error

	// ThreadErr makes CreateRemoteThread fail.
	ThreadErr error

	// WaitErr is returned by every remote thread's Wait.
	WaitErr error

	mu            sync.Mutex
	remoteThreads []RemoteCall
	terminated    *uint32
	closed        bool
}

// RemoteCall records one CreateRemoteThread invocation.
type RemoteCall struct {
	Start  remotemem.Address
	Param  remotemem.Address
	Waited time.Duration
	Closed bool
}

// NewProcess returns a fake process with an empty address space.
func NewProcess(pid uint32) *Process {
	return &Process{FakeMemory: remotemem.NewFakeMemory(), PID: pid}
}

func (p *Process) ID() (uint32, error) {
	if p.PID == 0 {
		return 0, ErrNotConfigured
	}
	return p.PID, nil
}

func (p *Process) PEBAddress() (remotemem.Address, error) {
	if p.PEB == 0 {
		return 0, ErrNotConfigured
	}
	return p.PEB, nil
}

func (p *Process) ImagePath() (string, error) {
	if p.ImageErr != nil {
		return "", p.ImageErr
	}
	if p.Image == "" {
		return "", ErrNotConfigured
	}
	return p.Image, nil
}

func (p *Process) CreationTime() (uint64, error) {
	if p.Created == 0 {
		return 0, ErrNotConfigured
	}
	return p.Created, nil
}

func (p *Process) CreateRemoteThread(start, param remotemem.Address) (target.RemoteThread, error) {
	if p.ThreadErr != nil {
		return nil, p.ThreadErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remoteThreads = append(p.remoteThreads, RemoteCall{Start: start, Param: param})
	return &remoteThread{p: p, idx: len(p.remoteThreads) - 1}, nil
}

func (p *Process) Terminate(exitCode uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = &exitCode
	return nil
}

func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// RemoteCalls returns the recorded CreateRemoteThread calls.
func (p *Process) RemoteCalls() []RemoteCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RemoteCall(nil), p.remoteThreads...)
}

// Terminated returns the exit code passed to Terminate, if it was called.
func (p *Process) Terminated() (uint32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.terminated == nil {
		return 0, false
	}
	return *p.terminated, true
}

// Closed reports whether Close was called.
func (p *Process) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type remoteThread struct {
	p   *Process
	idx int
}

func (t *remoteThread) Wait(timeout time.Duration) error {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.remoteThreads[t.idx].Waited = timeout
	return t.p.WaitErr
}

func (t *remoteThread) Close() error {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.remoteThreads[t.idx].Closed = true
	return nil
}

// Thread is a fake target.Thread.
type Thread struct {
	TID uint32
}

func (t Thread) ID() (uint32, error) {
	if t.TID == 0 {
		return 0, ErrNotConfigured
	}
	return t.TID, nil
}
