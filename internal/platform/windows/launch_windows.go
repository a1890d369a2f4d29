//go:build windows

package windows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	normalPriorityClass = 0x00000020
	createNoWindow      = 0x08000000
)

// LaunchDetached starts cmdLine with a raw UTF-16 environment block and no
// console window, and lets it run on its own.
func LaunchDetached(cmdLine string, env []uint16) error {
	cmdLinePtr, err := windows.UTF16PtrFromString(cmdLine)
	if err != nil {
		return err
	}

	var envBlock *uint16
	if len(env) > 0 {
		envBlock = terminatedEnvBlock(env)
	}

	si := windows.StartupInfo{Cb: uint32(unsafe.Sizeof(windows.StartupInfo{}))}
	var pi windows.ProcessInformation
	flags := uint32(normalPriorityClass | createNoWindow | windows.CREATE_UNICODE_ENVIRONMENT)

	err = windows.CreateProcess(
		nil,
		cmdLinePtr,
		nil, // process security attributes
		nil, // thread security attributes
		false,
		flags,
		envBlock,
		nil,
		&si,
		&pi,
	)
	if err != nil {
		return fmt.Errorf("CreateProcess: %w", err)
	}

	windows.CloseHandle(pi.Thread)
	windows.CloseHandle(pi.Process)
	return nil
}

// terminatedEnvBlock makes sure the block ends with the double NUL
// CreateProcess expects.
func terminatedEnvBlock(env []uint16) *uint16 {
	block := append([]uint16(nil), env...)
	for len(block) < 2 || block[len(block)-1] != 0 || block[len(block)-2] != 0 {
		block = append(block, 0)
	}
	return &block[0]
}
