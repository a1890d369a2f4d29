//go:build windows && (amd64 || arm64)

package windows

import "unsafe"

func verifyVersionInfo(info *osVersionInfoEx, typeMask uint32, conditionMask uint64) bool {
	r, _, _ := procVerifyVersionInfoW.Call(uintptr(unsafe.Pointer(info)), uintptr(typeMask), uintptr(conditionMask))
	return r != 0
}
