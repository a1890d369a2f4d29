// Package minidump chooses the dump flavour for a report and writes it.
package minidump

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// Type mirrors MINIDUMP_TYPE.
type Type uint32

const (
	WithIndirectlyReferencedMemory Type = 0x00000040
	WithUnloadedModules            Type = 0x00000020
	WithProcessThreadData          Type = 0x00000100
	WithFullMemoryInfo             Type = 0x00000800
)

// Base is written for every channel.
const Base = WithFullMemoryInfo | WithUnloadedModules

// DefaultPrereleaseChannels get the richer dump.
var DefaultPrereleaseChannels = []string{"nightly", "default"}

// IsPrerelease reports whether channel is one of prerelease. A nil list means
// DefaultPrereleaseChannels.
func IsPrerelease(channel string, prerelease []string) bool {
	if prerelease == nil {
		prerelease = DefaultPrereleaseChannels
	}
	return slices.Contains(prerelease, channel)
}

// SelectType returns the flags for a report on channel. Indirectly referenced
// memory is only requested on Windows 8 or later because older dbghelp
// cannot handle overlapping regions.
func SelectType(channel string, prerelease []string, windows8OrLater bool) Type {
	t := Base
	if IsPrerelease(channel, prerelease) {
		t |= WithProcessThreadData
		if windows8OrLater {
			t |= WithIndirectlyReferencedMemory
		}
	}
	return t
}

func (t Type) String() string {
	names := []struct {
		flag Type
		name string
	}{
		{WithIndirectlyReferencedMemory, "IndirectlyReferencedMemory"},
		{WithUnloadedModules, "UnloadedModules"},
		{WithProcessThreadData, "ProcessThreadData"},
		{WithFullMemoryInfo, "FullMemoryInfo"},
	}
	var parts []string
	rest := t
	for _, n := range names {
		if t&n.flag != 0 {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "Normal"
	}
	return strings.Join(parts, "|")
}

// Target writes a dump of the crashed process into an open file.
type Target interface {
	WriteMinidump(f *os.File, flags Type) error
}

// Write creates path and fills it with a dump of target.
func Write(path string, flags Type, target Target) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create minidump: %w", err)
	}
	if err := target.WriteMinidump(f, flags); err != nil {
		f.Close()
		return fmt.Errorf("MiniDumpWriteDump(%s): %w", flags, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close minidump: %w", err)
	}
	return nil
}
