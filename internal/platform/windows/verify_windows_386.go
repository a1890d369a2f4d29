//go:build windows && 386

package windows

import "unsafe"

// The 64-bit condition mask occupies two stack slots, low word first.
func verifyVersionInfo(info *osVersionInfoEx, typeMask uint32, conditionMask uint64) bool {
	r, _, _ := procVerifyVersionInfoW.Call(
		uintptr(unsafe.Pointer(info)),
		uintptr(typeMask),
		uintptr(uint32(conditionMask)),
		uintptr(uint32(conditionMask>>32)),
	)
	return r != 0
}
