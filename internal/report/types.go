package report

import (
	"strconv"

	"github.com/agentsh/wercrash/internal/appinfo"
)

const (
	// HangUI is the Hang annotation value for UI hangs.
	HangUI = "ui"

	// EventKind is the first line of every event file.
	EventKind = "crash.main.3"

	// werMarker tags reports produced by the WER module.
	werMarker = "1"
)

// Annotations is the crash annotation record written to the .extra file and
// appended to the event file. Field order is the serialized order.
type Annotations struct {
	BuildID               string `json:"BuildID"`
	CrashTime             string `json:"CrashTime"`
	InstallTime           string `json:"InstallTime"`
	Hang                  string `json:"Hang,omitempty"`
	OOMAllocationSize     string `json:"OOMAllocationSize,omitempty"`
	ProductID             string `json:"ProductID"`
	ProductName           string `json:"ProductName"`
	ReleaseChannel        string `json:"ReleaseChannel"`
	ServerURL             string `json:"ServerURL"`
	StartupTime           string `json:"StartupTime"`
	UptimeTS              string `json:"UptimeTS"`
	Vendor                string `json:"Vendor,omitempty"`
	Version               string `json:"Version"`
	WindowsErrorReporting string `json:"WindowsErrorReporting"`
}

// NewAnnotations builds the annotation record. It is a pure function of its
// inputs.
func NewAnnotations(info *appinfo.Information, crashTime, startupTime, oomAllocationSize uint64, uiHang bool) Annotations {
	a := Annotations{
		BuildID:               info.Data.BuildID,
		CrashTime:             strconv.FormatUint(crashTime, 10),
		InstallTime:           info.InstallTime,
		ProductID:             info.Data.ProductID,
		ProductName:           info.Data.Name,
		ReleaseChannel:        info.ReleaseChannel,
		ServerURL:             info.Data.ServerURL,
		StartupTime:           strconv.FormatUint(startupTime, 10),
		UptimeTS:              strconv.FormatUint(uptime(crashTime, startupTime), 10) + ".0",
		Vendor:                info.Data.Vendor,
		Version:               info.Data.Version,
		WindowsErrorReporting: werMarker,
	}
	if uiHang {
		a.Hang = HangUI
	}
	if oomAllocationSize != 0 {
		a.OOMAllocationSize = strconv.FormatUint(oomAllocationSize, 10)
	}
	return a
}

// uptime saturates at zero when the clock went backwards since startup.
func uptime(crashTime, startupTime uint64) uint64 {
	if startupTime > crashTime {
		return 0
	}
	return crashTime - startupTime
}

// EventFile is a parsed events/<id> file.
type EventFile struct {
	Kind        string      `json:"kind"`
	CrashTime   uint64      `json:"crash_time"`
	ID          string      `json:"id"`
	Annotations Annotations `json:"annotations"`
}
