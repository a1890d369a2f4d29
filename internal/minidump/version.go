package minidump

import "fmt"

// VerifyVersionInfo type-mask bits and comparison operators.
const (
	VerMinorVersion     uint32 = 0x0000001
	VerMajorVersion     uint32 = 0x0000002
	VerServicePackMinor uint32 = 0x0000010
	VerServicePackMajor uint32 = 0x0000020

	VerGreaterEqual uint8 = 3
)

// Version is an OS version floor.
type Version struct {
	Major, Minor                       uint32
	ServicePackMajor, ServicePackMinor uint16
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d", v.Major, v.Minor)
	if v.ServicePackMajor != 0 || v.ServicePackMinor != 0 {
		s += fmt.Sprintf(" SP%d.%d", v.ServicePackMajor, v.ServicePackMinor)
	}
	return s
}

// Windows8 is 6.2 with no service pack.
var Windows8 = Version{Major: 6, Minor: 2}

// TypeMask is the VerifyVersionInfo type mask comparing every component.
const TypeMask = VerMajorVersion | VerMinorVersion | VerServicePackMajor | VerServicePackMinor

// SetConditionMask reproduces VerSetConditionMask: each type bit owns a
// three-bit slot holding the comparison operator.
func SetConditionMask(mask uint64, typeBit uint32, condition uint8) uint64 {
	if typeBit == 0 {
		return mask
	}
	idx := 0
	for typeBit&1 == 0 {
		typeBit >>= 1
		idx++
	}
	shift := uint(3 * idx)
	mask &^= 7 << shift
	return mask | uint64(condition&7)<<shift
}

// ConditionMask is the mask for an "at least this version" check.
func ConditionMask() uint64 {
	var mask uint64
	for _, bit := range []uint32{VerMajorVersion, VerMinorVersion, VerServicePackMajor, VerServicePackMinor} {
		mask = SetConditionMask(mask, bit, VerGreaterEqual)
	}
	return mask
}

// AtLeast compares v with floor the way VerifyVersionInfo does with
// ConditionMask: lexicographically over major, minor, SP major, SP minor.
func (v Version) AtLeast(floor Version) bool {
	if v.Major != floor.Major {
		return v.Major > floor.Major
	}
	if v.Minor != floor.Minor {
		return v.Minor > floor.Minor
	}
	if v.ServicePackMajor != floor.ServicePackMajor {
		return v.ServicePackMajor > floor.ServicePackMajor
	}
	return v.ServicePackMinor >= floor.ServicePackMinor
}
