//go:build windows

package main

/*
#include <stdint.h>
*/
import "C"

import (
	"context"
	"unsafe"

	winplat "github.com/agentsh/wercrash/internal/platform/windows"
	"github.com/agentsh/wercrash/internal/wer"
)

var handler = &wer.Handler{System: winplat.System{}}

// pContext is the address the crashed process registered with WER. It lives
// in that process, so it stays a number and is never a Go pointer.

//export OutOfProcessExceptionEventCallback
func OutOfProcessExceptionEventCallback(
	pContext C.uintptr_t,
	pExceptionInformation unsafe.Pointer,
	pbOwnershipClaimed *C.int32_t,
	pwszEventName *C.uint16_t,
	pchSize *C.uint32_t,
	pdwSignatureCount *C.uint32_t,
) C.int32_t {
	info := (*winplat.RuntimeExceptionInformation)(pExceptionInformation)
	ev := winplat.NewEvent(uintptr(pContext), info)
	defer winplat.Release(ev)

	res := handler.Dispatch(context.Background(), ev)
	if res.Claimed && pbOwnershipClaimed != nil {
		*pbOwnershipClaimed = 1
	}
	return C.int32_t(res.Status)
}

//export OutOfProcessExceptionEventSignatureCallback
func OutOfProcessExceptionEventSignatureCallback(
	pContext C.uintptr_t,
	pExceptionInformation unsafe.Pointer,
	dwIndex C.uint32_t,
	pwszName *C.uint16_t,
	pchName *C.uint32_t,
	pwszValue *C.uint16_t,
	pchValue *C.uint32_t,
) C.int32_t {
	return C.int32_t(wer.SOK)
}

//export OutOfProcessExceptionEventDebuggerLaunchCallback
func OutOfProcessExceptionEventDebuggerLaunchCallback(
	pContext C.uintptr_t,
	pExceptionInformation unsafe.Pointer,
	pbIsCustomDebugger *C.int32_t,
	pwszDebuggerLaunch *C.uint16_t,
	pchDebuggerLaunch *C.uint32_t,
	pbIsDebuggerAutolaunch *C.int32_t,
) C.int32_t {
	if pbIsCustomDebugger != nil {
		*pbIsCustomDebugger = 0
	}
	return C.int32_t(wer.SOK)
}
