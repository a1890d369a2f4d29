// Package remotemem copies typed values in and out of another process's
// address space.
//
// Foreign addresses are plain numbers (Address) and are never dereferenced
// locally. Every transfer either moves the full requested length or fails;
// there is no partial-success reporting and no retry, because the target is
// usually frozen or already dead and a second attempt would not fare better.
package remotemem

import (
	"errors"
	"fmt"
	"math/bits"
	"unsafe"
)

// Address is a virtual address inside a foreign process.
type Address uintptr

// Memory is the raw transport for a foreign address space.
//
// Implementations report how many bytes were actually transferred; the typed
// helpers in this package treat anything short of the full length as failure.
type Memory interface {
	ReadMemory(addr Address, dst []byte) (int, error)
	WriteMemory(addr Address, src []byte) (int, error)
}

var (
	ErrInvalidProcess = errors.New("remotemem: invalid process")
	ErrShortTransfer  = errors.New("remotemem: short transfer")
	ErrSizeOverflow   = errors.New("remotemem: size overflow")
)

// Read copies sizeof(T) bytes from addr into a zeroed T.
func Read[T any](m Memory, addr Address) (T, error) {
	var v T
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
	if err := readFull(m, addr, buf); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ReadArray copies count consecutive T values starting at addr.
func ReadArray[T any](m Memory, addr Address, count int) ([]T, error) {
	if count < 0 {
		return nil, ErrSizeOverflow
	}
	var elem T
	hi, size := bits.Mul64(uint64(unsafe.Sizeof(elem)), uint64(count))
	if hi != 0 || size > uint64(^uintptr(0)>>1) {
		return nil, ErrSizeOverflow
	}
	out := make([]T, count)
	if size == 0 {
		if m == nil {
			return nil, ErrInvalidProcess
		}
		return out, nil
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), int(size))
	if err := readFull(m, addr, buf); err != nil {
		return nil, err
	}
	return out, nil
}

// Write copies the bytes of v to addr. The write is unsynchronized; callers
// rely on the target being suspended or on single-writer discipline.
func Write[T any](m Memory, v T, addr Address) error {
	if m == nil {
		return ErrInvalidProcess
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
	n, err := m.WriteMemory(addr, buf)
	if err != nil {
		return fmt.Errorf("write %d bytes at %#x: %w", len(buf), uintptr(addr), err)
	}
	if n != len(buf) {
		return ErrShortTransfer
	}
	return nil
}

func readFull(m Memory, addr Address, buf []byte) error {
	if m == nil {
		return ErrInvalidProcess
	}
	n, err := m.ReadMemory(addr, buf)
	if err != nil {
		return fmt.Errorf("read %d bytes at %#x: %w", len(buf), uintptr(addr), err)
	}
	if n != len(buf) {
		return ErrShortTransfer
	}
	return nil
}
