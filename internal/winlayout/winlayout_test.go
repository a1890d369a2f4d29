package winlayout

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsh/wercrash/internal/remotemem"
)

func TestLayout64(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("offsets below are for 64-bit targets")
	}

	var s SharedCrashState
	assert.Equal(t, uintptr(0), unsafe.Offsetof(s.NotifyProc))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(s.ChildPID))
	assert.Equal(t, uintptr(12), unsafe.Offsetof(s.DumpName))
	assert.Equal(t, uintptr(56), unsafe.Offsetof(s.OOMAllocationSize))
	assert.Equal(t, uintptr(64), unsafe.Sizeof(s))

	var c InProcessCrashContext
	assert.Equal(t, uintptr(8), unsafe.Offsetof(c.OOMAllocationSizePtr))

	var peb PEB
	assert.Equal(t, uintptr(0x20), unsafe.Offsetof(peb.ProcessParameters))

	var upp UserProcessParameters
	assert.Equal(t, uintptr(0x70), unsafe.Offsetof(upp.CommandLine))
	assert.Equal(t, uintptr(0x80), unsafe.Offsetof(upp.Environment))
	assert.Equal(t, uintptr(0xB0), unsafe.Offsetof(upp.WindowTitle))
	assert.Equal(t, uintptr(0xF0), unsafe.Offsetof(upp.CurrentDirectories))
	assert.Equal(t, uintptr(0x3F0), unsafe.Offsetof(upp.EnvironmentSize))
}

func TestSharedCrashStateRoundTrip(t *testing.T) {
	cases := []SharedCrashState{
		{},
		{NotifyProc: 0x7ff6_1234_0000, ChildPID: 4242, OOMAllocationSize: 1 << 20},
		{NotifyProc: 1, ChildPID: ^uint32(0), OOMAllocationSize: ^uintptr(0)},
	}
	copy(cases[1].DumpName[:], "0b2a5a3e-7d7e-4f0b-9d5c-8f1d3c2b1a00.dmp")
	for i := range cases[2].DumpName {
		cases[2].DumpName[i] = byte(i + 1)
	}

	for _, want := range cases {
		mem := remotemem.NewFakeMemory()
		mem.Map(0x5000, make([]byte, unsafe.Sizeof(want)))

		require.NoError(t, remotemem.Write(mem, want, 0x5000))
		got, err := remotemem.Read[SharedCrashState](mem, 0x5000)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIsMainProcess(t *testing.T) {
	assert.True(t, InProcessCrashContext{ProcessType: MainProcessType}.IsMainProcess())
	assert.False(t, InProcessCrashContext{ProcessType: 2}.IsMainProcess())
}
