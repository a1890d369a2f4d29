// Package procparams reads the command line and environment block of another
// process by walking its PEB to the RTL_USER_PROCESS_PARAMETERS block.
package procparams

import (
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/winlayout"
)

// ErrInvalidUTF16 is returned when a foreign string holds unpaired surrogates.
var ErrInvalidUTF16 = errors.New("procparams: invalid UTF-16")

// Process is what the reader needs from a target process.
type Process interface {
	remotemem.Memory
	PEBAddress() (remotemem.Address, error)
}

// Read returns the process parameter block of p.
func Read(p Process) (winlayout.UserProcessParameters, error) {
	var zero winlayout.UserProcessParameters

	pebAddr, err := p.PEBAddress()
	if err != nil {
		return zero, fmt.Errorf("query basic information: %w", err)
	}
	peb, err := remotemem.Read[winlayout.PEB](p, pebAddr)
	if err != nil {
		return zero, fmt.Errorf("read PEB: %w", err)
	}
	params, err := remotemem.Read[winlayout.UserProcessParameters](p, peb.ProcessParameters)
	if err != nil {
		return zero, fmt.Errorf("read process parameters: %w", err)
	}
	return params, nil
}

// CommandLine returns the decoded command line of p.
func CommandLine(p Process) (string, error) {
	params, err := Read(p)
	if err != nil {
		return "", err
	}
	units, err := remotemem.ReadArray[uint16](p, params.CommandLine.Buffer, int(params.CommandLine.Length)/2)
	if err != nil {
		return "", fmt.Errorf("read command line: %w", err)
	}
	return DecodeUTF16(units)
}

// EnvironmentBlock returns the raw environment block of p, including its
// terminating NULs, as UTF-16 code units.
func EnvironmentBlock(p Process) ([]uint16, error) {
	params, err := Read(p)
	if err != nil {
		return nil, err
	}
	env, err := remotemem.ReadArray[uint16](p, params.Environment, int(params.EnvironmentSize/2))
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return env, nil
}

// DecodeUTF16 decodes s, rejecting unpaired surrogates instead of replacing
// them.
func DecodeUTF16(s []uint16) (string, error) {
	for i := 0; i < len(s); i++ {
		c := rune(s[i])
		if !utf16.IsSurrogate(c) {
			continue
		}
		if c >= 0xDC00 || i+1 == len(s) {
			return "", ErrInvalidUTF16
		}
		if next := rune(s[i+1]); next < 0xDC00 || next > 0xDFFF {
			return "", ErrInvalidUTF16
		}
		i++
	}
	return string(utf16.Decode(s)), nil
}
