package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/agentsh/wercrash/internal/winlayout"
)

const (
	PendingDirName = "pending"
	EventsDirName  = "events"

	MinidumpExt = ".dmp"
	ExtraExt    = ".extra"
)

// CrashReport is one crash or hang report. Every artifact path derives from
// ID, so the dump, the .extra file and the event file always agree.
type CrashReport struct {
	ID                string      `json:"id"`
	Dir               string      `json:"dir"`
	Channel           string      `json:"release_channel"`
	Annotations       Annotations `json:"annotations"`
	CrashTime         uint64      `json:"crash_time"`
	OOMAllocationSize uint64      `json:"oom_allocation_size,omitempty"`
}

func (r *CrashReport) PendingDir() string { return filepath.Join(r.Dir, PendingDirName) }
func (r *CrashReport) EventsDir() string  { return filepath.Join(r.Dir, EventsDirName) }

func (r *CrashReport) MinidumpPath() string {
	return filepath.Join(r.PendingDir(), r.ID+MinidumpExt)
}

func (r *CrashReport) ExtraPath() string {
	return filepath.Join(r.PendingDir(), r.ID+ExtraExt)
}

func (r *CrashReport) EventPath() string {
	return filepath.Join(r.EventsDir(), r.ID)
}

// MinidumpName returns the dump file name in the fixed-size slot used by the
// shared crash state. A name longer than the slot is a programming error and
// panics; shorter names are NUL padded.
func (r *CrashReport) MinidumpName() [winlayout.DumpNameSize]byte {
	name := r.ID + MinidumpExt
	if len(name) > winlayout.DumpNameSize {
		panic(fmt.Sprintf("report: dump name %q exceeds %d bytes", name, winlayout.DumpNameSize))
	}
	var slot [winlayout.DumpNameSize]byte
	copy(slot[:], name)
	return slot
}

// EnsureDirs creates the pending and events directories.
func (r *CrashReport) EnsureDirs() error {
	for _, dir := range []string{r.PendingDir(), r.EventsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// WriteExtra writes the annotations as a single JSON object to the .extra
// file.
func (r *CrashReport) WriteExtra() error {
	b, err := MarshalAnnotations(&r.Annotations)
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.ExtraPath(), b, 0o644); err != nil {
		return fmt.Errorf("write extra file: %w", err)
	}
	return nil
}

// WriteEvent writes the event file consumed by the application on its next
// start.
func (r *CrashReport) WriteEvent() error {
	b, err := r.EventBytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.EventPath(), b, 0o644); err != nil {
		return fmt.Errorf("write event file: %w", err)
	}
	return nil
}

// EventBytes renders the event file:
//
//	crash.main.3
//	<crash time>
//	<id>
//	<annotations json>
func (r *CrashReport) EventBytes() ([]byte, error) {
	ann, err := MarshalAnnotations(&r.Annotations)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(EventKind)
	buf.WriteByte('\n')
	buf.WriteString(strconv.FormatUint(r.CrashTime, 10))
	buf.WriteByte('\n')
	buf.WriteString(r.ID)
	buf.WriteByte('\n')
	buf.Write(ann)
	return buf.Bytes(), nil
}

// MarshalAnnotations encodes annotations without HTML escaping and without a
// trailing newline.
func MarshalAnnotations(a *Annotations) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return nil, fmt.Errorf("encode annotations: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
