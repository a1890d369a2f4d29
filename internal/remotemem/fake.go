package remotemem

import (
	"errors"
	"sort"
	"sync"
)

// ErrUnmapped is returned by FakeMemory for addresses outside any region.
var ErrUnmapped = errors.New("remotemem: address not mapped")

// FakeMemory is a simulated foreign address space made of disjoint regions.
// A transfer that starts inside a region but runs past its end copies what
// fits and reports a short count, the way a partial ReadProcessMemory would.
type FakeMemory struct {
	mu      sync.Mutex
	regions []region

	// FailWrites makes every WriteMemory call fail.
	FailWrites bool

	reads  int
	writes int
}

type region struct {
	base Address
	data []byte
}

// NewFakeMemory returns an empty simulated address space.
func NewFakeMemory() *FakeMemory {
	return &FakeMemory{}
}

// Map installs a copy of data at base, replacing any region with the same base.
func (f *FakeMemory) Map(base Address, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), data...)
	for i := range f.regions {
		if f.regions[i].base == base {
			f.regions[i].data = cp
			return
		}
	}
	f.regions = append(f.regions, region{base: base, data: cp})
	sort.Slice(f.regions, func(i, j int) bool { return f.regions[i].base < f.regions[j].base })
}

// Bytes returns a copy of n bytes at addr, or nil if the range is not mapped.
func (f *FakeMemory) Bytes(addr Address, n int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, off, ok := f.find(addr)
	if !ok || off+n > len(r.data) {
		return nil
	}
	return append([]byte(nil), r.data[off:off+n]...)
}

// Reads reports how many ReadMemory calls were made.
func (f *FakeMemory) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Writes reports how many WriteMemory calls were made.
func (f *FakeMemory) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// ReadMemory implements Memory.
func (f *FakeMemory) ReadMemory(addr Address, dst []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	r, off, ok := f.find(addr)
	if !ok {
		return 0, ErrUnmapped
	}
	return copy(dst, r.data[off:]), nil
}

// WriteMemory implements Memory.
func (f *FakeMemory) WriteMemory(addr Address, src []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.FailWrites {
		return 0, errors.New("remotemem: write refused")
	}
	r, off, ok := f.find(addr)
	if !ok {
		return 0, ErrUnmapped
	}
	return copy(r.data[off:], src), nil
}

func (f *FakeMemory) find(addr Address) (*region, int, bool) {
	for i := range f.regions {
		r := &f.regions[i]
		if addr >= r.base && uint64(addr-r.base) < uint64(len(r.data)) {
			return r, int(addr - r.base), true
		}
	}
	return nil, 0, false
}
