package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentsh/wercrash/internal/appinfo"
	"github.com/agentsh/wercrash/internal/config"
	"github.com/agentsh/wercrash/internal/handoff"
	"github.com/agentsh/wercrash/internal/minidump"
	winplat "github.com/agentsh/wercrash/internal/platform/windows"
	"github.com/agentsh/wercrash/internal/procparams"
)

func newAppInfoCmd() *cobra.Command {
	var (
		installDir string
		pid        uint32
	)
	cmd := &cobra.Command{
		Use:   "appinfo",
		Short: "Show the application identity a crash would be reported under",
		Long: `Resolve application.ini, the release channel, the crash reports directory
and the install time the way the crash module does.

Examples:
  wercrash appinfo --install-dir "C:\Program Files\Mozilla Firefox"
  wercrash appinfo --pid 4812`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (installDir == "") == (pid == 0) {
				return errors.New("exactly one of --install-dir or --pid is required")
			}
			f := foldersFor(cmd)

			var (
				info *appinfo.Information
				err  error
			)
			if installDir != "" {
				info, err = appinfo.ResolveInstallDir(installDir, f)
			} else {
				p, openErr := winplat.OpenProcess(pid)
				if openErr != nil {
					return openErr
				}
				defer p.Close()
				info, err = appinfo.Resolve(p, f)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, newAppInfoView(info))
		},
	}
	cmd.Flags().StringVar(&installDir, "install-dir", "", "Application install directory")
	cmd.Flags().Uint32Var(&pid, "pid", 0, "Resolve from a running process")
	return cmd
}

// appInfoView adds what the crash module would decide for this
// application on this machine.
type appInfoView struct {
	*appinfo.Information
	OSVersion    string `json:"os_version,omitempty"`
	MinidumpType string `json:"minidump_type"`
}

func newAppInfoView(info *appinfo.Information) appInfoView {
	cfg, err := config.LoadOptional(filepath.Join(info.InstallDir, config.FileName))
	if err != nil {
		cfg = config.Default()
	}
	view := appInfoView{Information: info}
	if v, err := winplat.Version(); err == nil {
		view.OSVersion = v.String()
	}
	flags := minidump.SelectType(info.ReleaseChannel, cfg.Minidump.PrereleaseChannels, winplat.Windows8OrLater())
	view.MinidumpType = flags.String()
	return view
}

type parentView struct {
	PID         uint32 `json:"pid"`
	SharedState string `json:"shared_state"`
}

func newParseCmdLineCmd() *cobra.Command {
	var pid uint32
	cmd := &cobra.Command{
		Use:   "parse-cmdline [COMMAND LINE...]",
		Short: "Show the parent a subordinate process would notify",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cmdLine string
			switch {
			case pid != 0 && len(args) > 0:
				return errors.New("pass either a command line or --pid, not both")
			case pid != 0:
				p, err := winplat.OpenProcess(pid)
				if err != nil {
					return err
				}
				defer p.Close()
				if cmdLine, err = procparams.CommandLine(p); err != nil {
					return err
				}
			case len(args) > 0:
				cmdLine = strings.Join(args, " ")
			default:
				return errors.New("a command line or --pid is required")
			}

			parent, err := handoff.ParseChildCommandLine(cmdLine)
			if err != nil {
				return err
			}
			return printJSON(cmd, parentView{
				PID:         parent.PID,
				SharedState: fmt.Sprintf("0x%x", uint64(parent.SharedState)),
			})
		},
	}
	cmd.Flags().Uint32Var(&pid, "pid", 0, "Read the command line of a running process")
	return cmd
}
