package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func fixedBuilder() Builder {
	return Builder{
		Now:   func() time.Time { return time.Unix(1717300000, 0) },
		NewID: func() string { return testID },
	}
}

func TestBuildPathsShareID(t *testing.T) {
	info := testInfo()
	info.CrashReportsDir = t.TempDir()

	r := fixedBuilder().Build(info, 1717299000, 0, false)

	assert.Equal(t, testID, r.ID)
	assert.Equal(t, uint64(1717300000), r.CrashTime)
	assert.Equal(t, filepath.Join(info.CrashReportsDir, "pending", testID+".dmp"), r.MinidumpPath())
	assert.Equal(t, filepath.Join(info.CrashReportsDir, "pending", testID+".extra"), r.ExtraPath())
	assert.Equal(t, filepath.Join(info.CrashReportsDir, "events", testID), r.EventPath())
}

func TestBuildDefaultIDsDiffer(t *testing.T) {
	info := testInfo()
	a := Builder{}.Build(info, 0, 0, false)
	b := Builder{}.Build(info, 0, 0, false)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
	assert.Equal(t, strings.ToLower(a.ID), a.ID)
	assert.NotEqual(t, a.MinidumpPath(), b.MinidumpPath())
}

func TestMinidumpName(t *testing.T) {
	r := &CrashReport{ID: testID}
	name := r.MinidumpName()
	assert.Equal(t, testID+".dmp", string(name[:]))

	short := (&CrashReport{ID: "abc"}).MinidumpName()
	assert.Equal(t, "abc.dmp", string(short[:7]))
	for _, b := range short[7:] {
		assert.Zero(t, b)
	}
}

func TestMinidumpNameTooLongPanics(t *testing.T) {
	r := &CrashReport{ID: testID + "-extra"}
	assert.Panics(t, func() { r.MinidumpName() })
}

func TestWriteArtifacts(t *testing.T) {
	info := testInfo()
	info.CrashReportsDir = t.TempDir()
	r := fixedBuilder().Build(info, 1717299000, 0, false)

	require.NoError(t, r.EnsureDirs())
	require.NoError(t, r.WriteExtra())
	require.NoError(t, r.WriteEvent())

	extra, err := os.ReadFile(r.ExtraPath())
	require.NoError(t, err)
	want, err := MarshalAnnotations(&r.Annotations)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(extra))
	assert.False(t, strings.HasSuffix(string(extra), "\n"))

	event, err := os.ReadFile(r.EventPath())
	require.NoError(t, err)
	assert.Equal(t, "crash.main.3\n1717300000\n"+testID+"\n"+string(want), string(event))

	got, err := ReadExtra(r.ExtraPath())
	require.NoError(t, err)
	assert.Equal(t, r.Annotations, *got)

	ev, err := ReadEventFile(r.EventPath())
	require.NoError(t, err)
	assert.Equal(t, EventKind, ev.Kind)
	assert.Equal(t, testID, ev.ID)
	assert.Equal(t, uint64(1717300000), ev.CrashTime)
	assert.Equal(t, r.Annotations, ev.Annotations)
}

func TestWriteExtraMissingDir(t *testing.T) {
	info := testInfo()
	info.CrashReportsDir = filepath.Join(t.TempDir(), "absent")
	r := fixedBuilder().Build(info, 0, 0, false)

	assert.Error(t, r.WriteExtra())
}

func TestParseEventMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "wrong kind", in: "crash.content.1\n1\nid\n{}"},
		{name: "bad time", in: "crash.main.3\nsoon\nid\n{}"},
		{name: "bad json", in: "crash.main.3\n1\nid\n{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}

func TestListPending(t *testing.T) {
	dir := t.TempDir()
	pending := filepath.Join(dir, "pending")
	require.NoError(t, os.MkdirAll(pending, 0o755))

	older := time.Now().Add(-time.Hour)
	for _, f := range []string{"aaaa-1.dmp", "aaaa-1.extra", "bbbb-2.dmp", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(pending, f), []byte("x"), 0o644))
	}
	require.NoError(t, os.Chtimes(filepath.Join(pending, "aaaa-1.dmp"), older, older))

	all, err := ListPending(dir, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bbbb-2", all[0].ID)
	assert.Empty(t, all[0].ExtraPath)
	assert.Equal(t, "aaaa-1", all[1].ID)
	assert.Equal(t, filepath.Join(pending, "aaaa-1.extra"), all[1].ExtraPath)

	matched, err := ListPending(dir, "aaaa-*")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "aaaa-1", matched[0].ID)
}

func TestListPendingNoDirectory(t *testing.T) {
	got, err := ListPending(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFormatMarkdown(t *testing.T) {
	a := NewAnnotations(testInfo(), 1717300000, 1717299000, 512, true)
	md := FormatMarkdown(testID, &a, &PendingReport{MinidumpPath: "/x/" + testID + ".dmp", Size: 2048})

	assert.Contains(t, md, "# Hang Report: "+testID)
	assert.Contains(t, md, "2024-06-02")
	assert.Contains(t, md, "| Vendor | Mozilla |")
	assert.Contains(t, md, "| Channel | nightly |")
	assert.Contains(t, md, "| Uptime | 16m40s |")
	assert.Contains(t, md, "failed allocation of 512 bytes")
	assert.Contains(t, md, "(2048 bytes)")
}

func TestFormatMarkdownMinimal(t *testing.T) {
	info := testInfo()
	info.Data.Vendor = ""
	a := NewAnnotations(info, 1717300000, 1717299000, 0, false)
	md := FormatMarkdown(testID, &a, nil)

	assert.Contains(t, md, "# Crash Report: "+testID)
	assert.NotContains(t, md, "Vendor")
	assert.NotContains(t, md, "Out of memory")
	assert.NotContains(t, md, "## Minidump")
}
