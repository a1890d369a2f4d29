package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures an events directory watcher.
type WatcherConfig struct {
	CrashReportsDir string
	Debounce        time.Duration // quiet period before a new event file is read
	OnEvent         func(ev *EventFile, err error)
}

// Watcher reports event files as the crash module writes them.
type Watcher struct {
	dir      string
	debounce time.Duration
	onEvent  func(ev *EventFile, err error)
}

// NewWatcher creates a watcher for <CrashReportsDir>/events.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.CrashReportsDir == "" {
		return nil, fmt.Errorf("crash reports directory is required")
	}
	if cfg.OnEvent == nil {
		return nil, fmt.Errorf("event callback is required")
	}
	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		dir:      filepath.Join(cfg.CrashReportsDir, EventsDirName),
		debounce: debounce,
		onEvent:  cfg.OnEvent,
	}, nil
}

// Run watches until ctx is done. The events directory is created if missing.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating events dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(max(w.debounce/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.onEvent(nil, fmt.Errorf("watcher error: %w", err))

		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				ev, err := ReadEventFile(path)
				w.onEvent(ev, err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}
