package handoff

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/target"
	"github.com/agentsh/wercrash/internal/target/targettest"
	"github.com/agentsh/wercrash/internal/winlayout"
)

func TestParseChildCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		cmdLine string
		want    Parent
		wantErr bool
	}{
		{
			name:    "typical",
			cmdLine: `"C:\Program Files\App\app.exe" -contentproc -childID 3 -isForBrowser 4812 tab 7ff6a2b40010`,
			want:    Parent{PID: 4812, SharedState: 0x7ff6a2b40010},
		},
		{
			name:    "prefixed address and extra spacing",
			cmdLine: "app.exe  99   gpu\t0x1000  ",
			want:    Parent{PID: 99, SharedState: 0x1000},
		},
		{
			name:    "exactly three tokens",
			cmdLine: "1 x ff",
			want:    Parent{PID: 1, SharedState: 0xff},
		},
		{name: "two tokens", cmdLine: "12 ff", wantErr: true},
		{name: "empty", cmdLine: "", wantErr: true},
		{name: "address not hex", cmdLine: "app 12 tab zz", wantErr: true},
		{name: "pid not decimal", cmdLine: "app 0x12 tab ff", wantErr: true},
		{name: "pid out of range", cmdLine: "app 4294967296 tab ff", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChildCommandLine(tt.cmdLine)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedCommandLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const (
	parentPID   = 4812
	childPID    = 5120
	stateAddr   = remotemem.Address(0x5000_0000)
	notifyEntry = remotemem.Address(0x6000_1234)
)

type fakeOpener struct {
	procs  map[uint32]*targettest.Process
	opened []uint32
}

func (o *fakeOpener) OpenProcess(pid uint32) (target.Process, error) {
	o.opened = append(o.opened, pid)
	p, ok := o.procs[pid]
	if !ok {
		return nil, errors.New("access denied")
	}
	return p, nil
}

func newParent(t *testing.T) *targettest.Process {
	t.Helper()
	p := targettest.NewProcess(parentPID)
	var state winlayout.SharedCrashState
	p.Map(stateAddr, make([]byte, unsafe.Sizeof(state)))
	state.NotifyProc = notifyEntry
	copy(state.DumpName[:], "stale")
	require.NoError(t, remotemem.Write(p, state, stateAddr))
	return p
}

func newChild(cmdLine string) *targettest.Process {
	c := targettest.NewProcess(childPID)
	c.InstallParameters(cmdLine, targettest.EnvironmentBlock())
	return c
}

func dumpName(s string) [winlayout.DumpNameSize]byte {
	var b [winlayout.DumpNameSize]byte
	copy(b[:], s)
	return b
}

func TestParseChildCommandLineAddressWiderThanPointer(t *testing.T) {
	tooWide := "1" + strings.Repeat("0", strconv.IntSize/4)
	_, err := ParseChildCommandLine("app.exe 4812 tab " + tooWide)
	assert.ErrorIs(t, err, ErrMalformedCommandLine)

	widest := strings.Repeat("f", strconv.IntSize/4)
	p, err := ParseChildCommandLine("app.exe 4812 tab " + widest)
	require.NoError(t, err)
	assert.Equal(t, remotemem.Address(^uintptr(0)), p.SharedState)
}

func TestNotify(t *testing.T) {
	parent := newParent(t)
	child := newChild("app.exe -childID 1 4812 tab 50000000")
	opener := &fakeOpener{procs: map[uint32]*targettest.Process{parentPID: parent}}
	n := &Notifier{Opener: opener}

	res := Result{DumpName: dumpName("0f8fad5b-d9cb-469f-a165-70867728950e.dmp"), OOMAllocationSize: 1 << 20}
	require.NoError(t, n.Notify(context.Background(), child, res))

	assert.Equal(t, []uint32{parentPID}, opener.opened)
	state, err := remotemem.Read[winlayout.SharedCrashState](parent, stateAddr)
	require.NoError(t, err)
	assert.Equal(t, uint32(childPID), state.ChildPID)
	assert.Equal(t, res.DumpName, state.DumpName)
	assert.Equal(t, uintptr(1<<20), state.OOMAllocationSize)
	assert.Equal(t, notifyEntry, state.NotifyProc)

	calls := parent.RemoteCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, notifyEntry, calls[0].Start)
	assert.Equal(t, stateAddr, calls[0].Param)
	assert.Equal(t, DefaultTimeout, calls[0].Waited)
	assert.True(t, calls[0].Closed)
	assert.True(t, parent.Closed())
	assert.Equal(t, 0, child.Writes())
}

func TestNotifyUnopenableParentWritesNothing(t *testing.T) {
	parent := newParent(t)
	writesBefore := parent.Writes()
	child := newChild("app.exe 4812 tab 50000000")
	opener := &fakeOpener{procs: map[uint32]*targettest.Process{}}

	err := (&Notifier{Opener: opener}).Notify(context.Background(), child, Result{})
	require.Error(t, err)
	assert.Equal(t, writesBefore, parent.Writes())
	assert.Empty(t, parent.RemoteCalls())
}

func TestNotifyFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(parent, child *targettest.Process)
	}{
		{
			name:  "unreadable shared state",
			setup: func(parent, child *targettest.Process) { child.InstallParameters("app 4812 tab 90000000", nil) },
		},
		{
			name:  "write rejected",
			setup: func(parent, child *targettest.Process) { parent.FailWrites = true },
		},
		{
			name:  "thread creation fails",
			setup: func(parent, child *targettest.Process) { parent.ThreadErr = errors.New("no thread") },
		},
		{
			name:  "wait times out",
			setup: func(parent, child *targettest.Process) { parent.WaitErr = errors.New("timeout") },
		},
		{
			name:  "no parameters",
			setup: func(parent, child *targettest.Process) { child.PEB = 0 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := newParent(t)
			child := newChild("app.exe 4812 tab 50000000")
			tt.setup(parent, child)
			n := &Notifier{
				Opener:  &fakeOpener{procs: map[uint32]*targettest.Process{parentPID: parent}},
				Timeout: time.Second,
			}
			assert.Error(t, n.Notify(context.Background(), child, Result{}))
		})
	}
}

func TestNotifyCustomTimeout(t *testing.T) {
	parent := newParent(t)
	child := newChild("app.exe 4812 tab 50000000")
	n := &Notifier{
		Opener:  &fakeOpener{procs: map[uint32]*targettest.Process{parentPID: parent}},
		Timeout: 250 * time.Millisecond,
	}
	require.NoError(t, n.Notify(context.Background(), child, Result{}))
	assert.Equal(t, 250*time.Millisecond, parent.RemoteCalls()[0].Waited)
}
