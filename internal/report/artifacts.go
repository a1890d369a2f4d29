package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

var ErrMalformedEvent = errors.New("report: malformed event file")

// ReadExtra loads an .extra file.
func ReadExtra(path string) (*Annotations, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Annotations
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &a, nil
}

// ReadEventFile loads an events/<id> file.
func ReadEventFile(path string) (*EventFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseEvent(f)
}

// ParseEvent parses the event file format written by WriteEvent.
func ParseEvent(r io.Reader) (*EventFile, error) {
	br := bufio.NewReader(r)
	var header [3]string
	for i := range header {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header line %d", ErrMalformedEvent, i+1)
		}
		header[i] = strings.TrimRight(line, "\r\n")
	}
	if header[0] != EventKind {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, header[0])
	}
	crashTime, err := strconv.ParseUint(header[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: crash time: %v", ErrMalformedEvent, err)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	ev := &EventFile{Kind: header[0], CrashTime: crashTime, ID: header[2]}
	if err := json.Unmarshal(bytes.TrimSpace(body), &ev.Annotations); err != nil {
		return nil, fmt.Errorf("%w: annotations: %v", ErrMalformedEvent, err)
	}
	return ev, nil
}

// PendingReport is a dump waiting in the pending directory.
type PendingReport struct {
	ID           string    `json:"id"`
	MinidumpPath string    `json:"minidump"`
	ExtraPath    string    `json:"extra,omitempty"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"mod_time"`
}

// ListPending returns the dumps under <crashReportsDir>/pending, newest
// first. A non-empty pattern is a glob matched against the report id.
func ListPending(crashReportsDir, pattern string) ([]PendingReport, error) {
	var match glob.Glob
	if pattern != "" {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		match = g
	}

	dir := filepath.Join(crashReportsDir, PendingDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []PendingReport
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != MinidumpExt {
			continue
		}
		id := strings.TrimSuffix(e.Name(), MinidumpExt)
		if match != nil && !match.Match(id) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		pr := PendingReport{
			ID:           id,
			MinidumpPath: filepath.Join(dir, e.Name()),
			Size:         info.Size(),
			ModTime:      info.ModTime(),
		}
		if extra := filepath.Join(dir, id+ExtraExt); fileExists(extra) {
			pr.ExtraPath = extra
		}
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
