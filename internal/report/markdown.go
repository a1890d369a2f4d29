package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatMarkdown renders a crash report as markdown. dump may be nil when
// the minidump is no longer pending.
func FormatMarkdown(id string, a *Annotations, dump *PendingReport) string {
	var sb strings.Builder

	// Header
	kind := "Crash"
	if a.Hang != "" {
		kind = "Hang"
	}
	sb.WriteString(fmt.Sprintf("# %s Report: %s\n", kind, id))
	if t, ok := unixField(a.CrashTime); ok {
		sb.WriteString(fmt.Sprintf("**Crashed:** %s\n", t.Format("2006-01-02 15:04:05 UTC")))
	}
	sb.WriteString("\n")

	// Application
	sb.WriteString("## Application\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	if a.Vendor != "" {
		sb.WriteString(fmt.Sprintf("| Vendor | %s |\n", a.Vendor))
	}
	sb.WriteString(fmt.Sprintf("| Product | %s |\n", a.ProductName))
	sb.WriteString(fmt.Sprintf("| Version | %s |\n", a.Version))
	sb.WriteString(fmt.Sprintf("| Build ID | %s |\n", a.BuildID))
	sb.WriteString(fmt.Sprintf("| Channel | %s |\n", a.ReleaseChannel))
	sb.WriteString(fmt.Sprintf("| Product ID | %s |\n", a.ProductID))
	sb.WriteString("\n")

	// Timing
	sb.WriteString("## Timing\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	if t, ok := unixField(a.StartupTime); ok {
		sb.WriteString(fmt.Sprintf("| Started | %s |\n", t.Format(time.RFC3339)))
	}
	if up, err := strconv.ParseFloat(a.UptimeTS, 64); err == nil {
		sb.WriteString(fmt.Sprintf("| Uptime | %s |\n", time.Duration(up*float64(time.Second)).String()))
	}
	if t, ok := unixField(a.InstallTime); ok {
		sb.WriteString(fmt.Sprintf("| Installed | %s |\n", t.Format(time.RFC3339)))
	}
	sb.WriteString("\n")

	if a.OOMAllocationSize != "" {
		sb.WriteString(fmt.Sprintf("**Out of memory:** failed allocation of %s bytes\n\n", a.OOMAllocationSize))
	}

	if dump != nil {
		sb.WriteString("## Minidump\n")
		sb.WriteString(fmt.Sprintf("- `%s` (%d bytes)\n", dump.MinidumpPath, dump.Size))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Submission endpoint: %s\n", a.ServerURL))
	return sb.String()
}

func unixField(s string) (time.Time, bool) {
	secs, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}
