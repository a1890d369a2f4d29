// Package appinfo recovers the identity of a crashed application from its
// executable location: the install directory, application.ini, the update
// channel, the crash reports directory and the recorded install time.
package appinfo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	// ApplicationIniName is the identity file in the install directory.
	ApplicationIniName = "application.ini"
	// ChannelPrefsPath is the channel preferences file, relative to the install directory.
	ChannelPrefsPath = "defaults/pref/channel-prefs.js"
	// ChannelPref is the preference holding the release channel.
	ChannelPref = "app.update.channel"
	// CrashReportsDirName is the per-product crash directory under roaming app data.
	CrashReportsDirName = "Crash Reports"
	// InstallTimePrefix prefixes the build id to form the install-time file name.
	InstallTimePrefix = "InstallTime"

	appSection           = "App"
	crashReporterSection = "Crash Reporter"
)

var (
	ErrMissingSection = errors.New("appinfo: missing section")
	ErrMissingKey     = errors.New("appinfo: missing key")
	ErrNoChannel      = errors.New("appinfo: release channel not found")
)

// Process is what the resolver needs from the crashed process.
type Process interface {
	ImagePath() (string, error)
}

// Folders resolves well-known shell folders.
type Folders interface {
	RoamingAppData() (string, error)
}

// ApplicationData is the identity read from application.ini.
type ApplicationData struct {
	Vendor    string `json:"vendor,omitempty"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildID   string `json:"build_id"`
	ProductID string `json:"product_id"`
	ServerURL string `json:"server_url"`
}

// Information describes the application that crashed.
type Information struct {
	InstallDir      string          `json:"install_dir"`
	Data            ApplicationData `json:"application"`
	ReleaseChannel  string          `json:"release_channel"`
	CrashReportsDir string          `json:"crash_reports_dir"`
	InstallTime     string          `json:"install_time"`
}

// Resolve derives Information from the crashed process. Every step depends on
// the previous one and any failure aborts the whole resolution.
func Resolve(p Process, folders Folders) (*Information, error) {
	image, err := p.ImagePath()
	if err != nil {
		return nil, fmt.Errorf("image path: %w", err)
	}
	return ResolveInstallDir(filepath.Dir(image), folders)
}

// ResolveInstallDir is Resolve for a known install directory.
func ResolveInstallDir(installDir string, folders Folders) (*Information, error) {
	data, err := LoadApplicationData(installDir)
	if err != nil {
		return nil, err
	}
	channel, err := ReleaseChannel(installDir)
	if err != nil {
		return nil, err
	}
	appData, err := folders.RoamingAppData()
	if err != nil {
		return nil, fmt.Errorf("roaming app data: %w", err)
	}
	crashDir := CrashReportsDir(appData, data)
	installTime, err := InstallTime(crashDir, data.BuildID)
	if err != nil {
		return nil, err
	}
	return &Information{
		InstallDir:      installDir,
		Data:            *data,
		ReleaseChannel:  channel,
		CrashReportsDir: crashDir,
		InstallTime:     installTime,
	}, nil
}

// LoadApplicationData parses application.ini in installDir. Vendor is the
// only optional key.
func LoadApplicationData(installDir string) (*ApplicationData, error) {
	path := filepath.Join(installDir, ApplicationIniName)
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ApplicationIniName, err)
	}

	app, err := section(cfg, appSection)
	if err != nil {
		return nil, err
	}
	data := &ApplicationData{}
	if app.HasKey("Vendor") {
		data.Vendor = app.Key("Vendor").String()
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"Name", &data.Name},
		{"Version", &data.Version},
		{"BuildID", &data.BuildID},
		{"ID", &data.ProductID},
	} {
		if *f.dst, err = required(app, f.key); err != nil {
			return nil, err
		}
	}

	cr, err := section(cfg, crashReporterSection)
	if err != nil {
		return nil, err
	}
	if data.ServerURL, err = required(cr, "ServerURL"); err != nil {
		return nil, err
	}
	return data, nil
}

func section(cfg *ini.File, name string) (*ini.Section, error) {
	if !cfg.HasSection(name) {
		return nil, fmt.Errorf("%w: [%s]", ErrMissingSection, name)
	}
	return cfg.Section(name), nil
}

func required(s *ini.Section, key string) (string, error) {
	if !s.HasKey(key) {
		return "", fmt.Errorf("%w: [%s] %s", ErrMissingKey, s.Name(), key)
	}
	return s.Key(key).String(), nil
}

// ReleaseChannel scans the channel preferences file for the update channel
// pref and returns its quoted value, e.g. nightly for
//
//	pref("app.update.channel", "nightly");
func ReleaseChannel(installDir string) (string, error) {
	f, err := os.Open(filepath.Join(installDir, filepath.FromSlash(ChannelPrefsPath)))
	if err != nil {
		return "", fmt.Errorf("open channel prefs: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, ChannelPref) {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) < 4 {
			return "", ErrNoChannel
		}
		return parts[3], nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("scan channel prefs: %w", err)
	}
	return "", ErrNoChannel
}

// CrashReportsDir returns <appData>/[<vendor>/]<name>/Crash Reports.
func CrashReportsDir(appData string, data *ApplicationData) string {
	return filepath.Join(appData, data.Vendor, data.Name, CrashReportsDirName)
}

// InstallTime returns the contents of the install-time file for buildID. The
// file is written at install time by the application; its absence is an error.
func InstallTime(crashReportsDir, buildID string) (string, error) {
	b, err := os.ReadFile(filepath.Join(crashReportsDir, InstallTimePrefix+buildID))
	if err != nil {
		return "", fmt.Errorf("read install time: %w", err)
	}
	return string(b), nil
}
