package targettest

import (
	"unicode/utf16"
	"unsafe"

	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/winlayout"
)

// Addresses used by InstallParameters.
const (
	PEBBase         remotemem.Address = 0x7ff0_0000
	ParamsBase      remotemem.Address = 0x7ff1_0000
	CommandLineBase remotemem.Address = 0x7ff2_0000
	EnvironmentBase remotemem.Address = 0x7ff3_0000
)

// InstallParameters maps a PEB and a process parameter block into p so that
// the process reports cmdLine as its command line and env as its raw
// environment block.
func (p *Process) InstallParameters(cmdLine string, env []uint16) {
	cmd := utf16.Encode([]rune(cmdLine))
	p.InstallRawParameters(cmd, env)
}

// InstallRawParameters is InstallParameters with a pre-encoded command line,
// for tests that need malformed UTF-16.
func (p *Process) InstallRawParameters(cmd []uint16, env []uint16) {
	p.PEB = PEBBase
	p.Map(PEBBase, structBytes(winlayout.PEB{ProcessParameters: ParamsBase}))

	params := winlayout.UserProcessParameters{
		CommandLine: winlayout.UnicodeString{
			Length:        uint16(len(cmd) * 2),
			MaximumLength: uint16(len(cmd) * 2),
			Buffer:        CommandLineBase,
		},
		Environment:     EnvironmentBase,
		EnvironmentSize: uint32(len(env) * 2),
	}
	p.Map(ParamsBase, structBytes(params))
	p.Map(CommandLineBase, unitsBytes(cmd))
	p.Map(EnvironmentBase, unitsBytes(env))
}

// EnvironmentBlock builds a Windows environment block from KEY=VALUE pairs.
func EnvironmentBlock(vars ...string) []uint16 {
	var block []uint16
	for _, v := range vars {
		block = append(block, utf16.Encode([]rune(v))...)
		block = append(block, 0)
	}
	return append(block, 0)
}

func structBytes[T any](v T) []byte {
	return append([]byte(nil), unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))...)
}

func unitsBytes(u []uint16) []byte {
	if len(u) == 0 {
		return []byte{0, 0}
	}
	return append([]byte(nil), unsafe.Slice((*byte)(unsafe.Pointer(&u[0])), len(u)*2)...)
}
