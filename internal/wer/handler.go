package wer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/agentsh/wercrash/internal/appinfo"
	"github.com/agentsh/wercrash/internal/config"
	"github.com/agentsh/wercrash/internal/handoff"
	"github.com/agentsh/wercrash/internal/hang"
	"github.com/agentsh/wercrash/internal/logging"
	"github.com/agentsh/wercrash/internal/minidump"
	"github.com/agentsh/wercrash/internal/procparams"
	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/report"
	"github.com/agentsh/wercrash/internal/winlayout"
)

// Outcome says what became of an event that did not fail.
type Outcome int

const (
	// Ignored events produced no report: non-fatal exceptions that are not
	// UI hangs. They are still claimed and terminated like handled ones.
	Ignored Outcome = iota
	// Handled events produced a report; the crashed process must go.
	Handled
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Handled:
		return "handled"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Handler processes events.
type Handler struct {
	System  System
	Builder report.Builder
	// LoadConfig reads the settings for an install directory. Defaults to
	// config.LoadOptional on <installDir>/wercrash.yaml.
	LoadConfig func(installDir string) (*config.Config, error)
	// Logger is used until the application's own configuration is known.
	Logger *slog.Logger
}

// HandleEvent runs the whole pipeline for ev. Hang detection failures make
// the event Ignored; any other failure is returned.
func (h *Handler) HandleEvent(ctx context.Context, ev *Event) (Outcome, error) {
	log := h.Logger
	if log == nil {
		log = logging.Discard()
	}

	if !ev.Fatal {
		if !h.detectHang(ev) {
			log.Debug("non-fatal exception ignored", "code", ev.ExceptionCode)
			return Ignored, nil
		}
	}

	sys := h.System
	info, err := appinfo.Resolve(ev.Process, sys)
	if err != nil {
		return Ignored, fmt.Errorf("resolve application: %w", err)
	}

	// An unusable settings file never costs the report.
	cfg, err := h.loadConfig(info.InstallDir)
	if err != nil {
		log.Debug("config unusable, using defaults", "error", err)
		cfg = config.Default()
	}
	// A broken log destination never fails the event.
	if l, closer, err := logging.New(cfg.Logging, info.CrashReportsDir); err == nil {
		defer closer.Close()
		log = l
	}

	crashCtx, err := remotemem.Read[winlayout.InProcessCrashContext](ev.Process, ev.Context)
	if err != nil {
		return Ignored, fmt.Errorf("read crash context: %w", err)
	}
	created, err := ev.Process.CreationTime()
	if err != nil {
		return Ignored, fmt.Errorf("process creation time: %w", err)
	}
	oom := oomAllocationSize(ev.Process, crashCtx)

	rep := h.Builder.Build(info, report.FiletimeToUnix(created), oom, ev.UIHang)
	log = log.With("id", rep.ID)
	if err := rep.EnsureDirs(); err != nil {
		return Ignored, err
	}

	flags := minidump.SelectType(rep.Channel, cfg.Minidump.PrereleaseChannels, sys.Windows8OrLater())
	if err := minidump.Write(rep.MinidumpPath(), flags, eventTarget{sys: sys, ev: ev}); err != nil {
		return Ignored, err
	}
	log.Info("minidump written", "flags", flags.String(), "hang", ev.UIHang)

	if crashCtx.IsMainProcess() {
		err = h.handleMainProcess(ev, info, cfg, rep, log)
	} else {
		err = h.handleSubordinate(ctx, ev, cfg, rep, oom)
	}
	if err != nil {
		return Ignored, err
	}
	log.Info("crash handled", "main", crashCtx.IsMainProcess())
	return Handled, nil
}

// detectHang reports whether ev is a UI hang, and if so retargets it at the
// thread owning the hung window.
func (h *Handler) detectHang(ev *Event) bool {
	if !hang.Applies(ev.Fatal, ev.ExceptionCode) {
		return false
	}
	pid, err := ev.Process.ID()
	if err != nil {
		return false
	}
	tid, err := hang.FindHungWindowThread(h.System, pid)
	if err != nil {
		return false
	}
	if err := h.System.CaptureThread(ev, tid); err != nil {
		return false
	}
	ev.UIHang = true
	return true
}

func (h *Handler) loadConfig(installDir string) (*config.Config, error) {
	if h.LoadConfig != nil {
		return h.LoadConfig(installDir)
	}
	return config.LoadOptional(filepath.Join(installDir, config.FileName))
}

// oomAllocationSize reads the size of the failed allocation, if the process
// recorded one. It is zero when the pointer is null or unreadable.
func oomAllocationSize(m remotemem.Memory, c winlayout.InProcessCrashContext) uint64 {
	if c.OOMAllocationSizePtr == 0 {
		return 0
	}
	n, err := remotemem.Read[uintptr](m, c.OOMAllocationSizePtr)
	if err != nil {
		return 0
	}
	return uint64(n)
}

func (h *Handler) handleMainProcess(ev *Event, info *appinfo.Information, cfg *config.Config, rep *report.CrashReport, log *slog.Logger) error {
	if err := rep.WriteExtra(); err != nil {
		return err
	}
	if err := rep.WriteEvent(); err != nil {
		return err
	}
	env, err := procparams.EnvironmentBlock(ev.Process)
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if cfg.Client.Disabled {
		log.Info("reporting client disabled")
		return nil
	}
	cmdLine := ClientCommandLine(info.InstallDir, cfg.Client.Executable, rep.MinidumpPath())
	if err := h.System.LaunchProcess(cmdLine, env); err != nil {
		log.Warn("reporting client did not start", "error", err)
	}
	return nil
}

func (h *Handler) handleSubordinate(ctx context.Context, ev *Event, cfg *config.Config, rep *report.CrashReport, oom uint64) error {
	n := &handoff.Notifier{Opener: h.System, Timeout: cfg.Notify.Timeout}
	return n.Notify(ctx, ev.Process, handoff.Result{
		DumpName:          rep.MinidumpName(),
		OOMAllocationSize: oom,
	})
}

// ClientCommandLine is `"<installDir>\<executable>" "<dump path>"`.
func ClientCommandLine(installDir, executable, dumpPath string) string {
	return `"` + filepath.Join(installDir, executable) + `" "` + dumpPath + `"`
}
