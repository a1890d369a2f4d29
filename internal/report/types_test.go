package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsh/wercrash/internal/appinfo"
)

func testInfo() *appinfo.Information {
	return &appinfo.Information{
		InstallDir: `C:\Program Files\Firefox Nightly`,
		Data: appinfo.ApplicationData{
			Vendor:    "Mozilla",
			Name:      "Firefox",
			Version:   "128.0a1",
			BuildID:   "20240601093012",
			ProductID: "{ec8030f7-c20a-464f-9b0e-13a3a9e97384}",
			ServerURL: "https://crash-reports.example.com/submit?id=1&v=2",
		},
		ReleaseChannel:  "nightly",
		CrashReportsDir: "/tmp/crashes",
		InstallTime:     "1717234212",
	}
}

func TestNewAnnotationsSerializedOrder(t *testing.T) {
	a := NewAnnotations(testInfo(), 1717300000, 1717299000, 0, false)

	b, err := MarshalAnnotations(&a)
	require.NoError(t, err)
	assert.Equal(t, `{"BuildID":"20240601093012","CrashTime":"1717300000","InstallTime":"1717234212",`+
		`"ProductID":"{ec8030f7-c20a-464f-9b0e-13a3a9e97384}","ProductName":"Firefox","ReleaseChannel":"nightly",`+
		`"ServerURL":"https://crash-reports.example.com/submit?id=1&v=2","StartupTime":"1717299000",`+
		`"UptimeTS":"1000.0","Vendor":"Mozilla","Version":"128.0a1","WindowsErrorReporting":"1"}`, string(b))
}

func TestNewAnnotationsOptionalFields(t *testing.T) {
	info := testInfo()
	info.Data.Vendor = ""

	a := NewAnnotations(info, 100, 40, 4096, true)
	assert.Equal(t, "ui", a.Hang)
	assert.Equal(t, "4096", a.OOMAllocationSize)
	assert.Equal(t, "60.0", a.UptimeTS)

	b, err := MarshalAnnotations(&a)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"InstallTime":"1717234212","Hang":"ui","OOMAllocationSize":"4096","ProductID"`)
	assert.NotContains(t, s, "Vendor")
}

func TestNewAnnotationsClockSkew(t *testing.T) {
	a := NewAnnotations(testInfo(), 10, 20, 0, false)
	assert.Equal(t, "0.0", a.UptimeTS)
	assert.Empty(t, a.OOMAllocationSize)
	assert.Empty(t, a.Hang)
}

func TestFiletimeToUnix(t *testing.T) {
	assert.Equal(t, uint64(0), FiletimeToUnix(0))
	assert.Equal(t, uint64(0), FiletimeToUnix(116444736000000000))
	// 2024-06-01T09:30:12Z
	assert.Equal(t, uint64(1717234212), FiletimeToUnix(133617078120000000))
	assert.Equal(t, uint64(1717234212), FiletimeToUnix(133617078129999999))
}
