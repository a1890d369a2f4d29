package hang

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	tid, pid uint32
	hung     bool
}

type fakeDesktop struct {
	windows []fakeWindow
	visited int
	enumErr error
}

func (d *fakeDesktop) EnumWindows(fn func(Window) bool) error {
	for i := range d.windows {
		d.visited++
		if !fn(Window(i)) {
			return errors.New("enumeration stopped")
		}
	}
	return d.enumErr
}

func (d *fakeDesktop) WindowThreadProcessID(w Window) (uint32, uint32) {
	win := d.windows[w]
	return win.tid, win.pid
}

func (d *fakeDesktop) IsHungAppWindow(w Window) bool {
	return d.windows[w].hung
}

func TestApplies(t *testing.T) {
	assert.True(t, Applies(false, 0x80000003))
	assert.False(t, Applies(true, 0x80000003))
	assert.False(t, Applies(false, 0xC0000005))
}

func TestFindHungWindowThreadFirstMatchWins(t *testing.T) {
	d := &fakeDesktop{windows: []fakeWindow{
		{tid: 11, pid: 900, hung: true},
		{tid: 21, pid: 42, hung: false},
		{tid: 22, pid: 42, hung: true},
		{tid: 23, pid: 42, hung: true},
		{tid: 31, pid: 77, hung: true},
	}}

	tid, err := FindHungWindowThread(d, 42)
	require.NoError(t, err)
	assert.Equal(t, uint32(22), tid)
	assert.Equal(t, 3, d.visited, "enumeration should stop at the first match")
}

func TestFindHungWindowThreadSkipsDeadWindows(t *testing.T) {
	d := &fakeDesktop{windows: []fakeWindow{
		{tid: 0, pid: 42, hung: true},
		{tid: 5, pid: 42, hung: true},
	}}

	tid, err := FindHungWindowThread(d, 42)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), tid)
}

func TestFindHungWindowThreadNone(t *testing.T) {
	d := &fakeDesktop{
		windows: []fakeWindow{{tid: 5, pid: 42}, {tid: 6, pid: 43, hung: true}},
		enumErr: errors.New("access denied"),
	}

	_, err := FindHungWindowThread(d, 42)
	assert.ErrorIs(t, err, ErrNoHungWindow)
	assert.Equal(t, 2, d.visited)
}
