package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/agentsh/wercrash/internal/appinfo"
	"github.com/agentsh/wercrash/internal/report"
)

type reportsFlags struct {
	dir        string
	installDir string
}

func newReportsCmd() *cobra.Command {
	f := &reportsFlags{}
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect crash reports written by the crash module",
		Long: `Inspect the pending minidumps, .extra annotation files and event files
under an application's crash reports directory.

Examples:
  # Reports for an installed application
  wercrash reports list --install-dir "C:\Program Files\Mozilla Firefox"

  # One report as markdown
  wercrash reports show 0f8fad5b-d9cb-469f-a165-70867728950e --dir "%APPDATA%\Mozilla\Firefox\Crash Reports"

  # Follow new crashes
  wercrash reports watch --dir "%APPDATA%\Mozilla\Firefox\Crash Reports"`,
	}
	cmd.PersistentFlags().StringVar(&f.dir, "dir", "", "Crash reports directory")
	cmd.PersistentFlags().StringVar(&f.installDir, "install-dir", "", "Derive the crash reports directory from this install directory")

	cmd.AddCommand(newReportsListCmd(f))
	cmd.AddCommand(newReportsShowCmd(f))
	cmd.AddCommand(newReportsWatchCmd(f))
	return cmd
}

// crashReportsDir resolves --dir, or derives the directory from the
// application identity in --install-dir.
func (f *reportsFlags) crashReportsDir(cmd *cobra.Command) (string, error) {
	if f.dir != "" {
		return f.dir, nil
	}
	if f.installDir == "" {
		return "", errors.New("--dir or --install-dir is required")
	}
	data, err := appinfo.LoadApplicationData(f.installDir)
	if err != nil {
		return "", err
	}
	appData, err := foldersFor(cmd).RoamingAppData()
	if err != nil {
		return "", err
	}
	return appinfo.CrashReportsDir(appData, data), nil
}

func newReportsListCmd(f *reportsFlags) *cobra.Command {
	var (
		match  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := f.crashReportsDir(cmd)
			if err != nil {
				return err
			}
			pending, err := report.ListPending(dir, match)
			if err != nil {
				return err
			}
			if asJSON {
				if pending == nil {
					pending = []report.PendingReport{}
				}
				return printJSON(cmd, pending)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMODIFIED\tSIZE\tEXTRA")
			for _, p := range pending {
				extra := "no"
				if p.ExtraPath != "" {
					extra = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.ModTime.UTC().Format("2006-01-02 15:04:05"), p.Size, extra)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "Glob matched against report ids")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newReportsShowCmd(f *reportsFlags) *cobra.Command {
	var (
		asJSON bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one pending report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := f.crashReportsDir(cmd)
			if err != nil {
				return err
			}
			id := args[0]
			pending, err := report.ListPending(dir, "")
			if err != nil {
				return err
			}
			var dump *report.PendingReport
			for i := range pending {
				if pending[i].ID == id {
					dump = &pending[i]
					break
				}
			}
			if dump == nil {
				return fmt.Errorf("report %s not found in %s", id, dir)
			}
			if dump.ExtraPath == "" {
				return fmt.Errorf("report %s has no annotations", id)
			}
			a, err := report.ReadExtra(dump.ExtraPath)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, a)
			}

			md := report.FormatMarkdown(id, a, dump)
			if output != "" {
				if err := os.WriteFile(output, []byte(md), 0644); err != nil {
					return fmt.Errorf("write output file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", output)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the annotations as JSON")
	cmd.Flags().StringVar(&output, "output", "", "Output file path (default: stdout)")
	return cmd
}

func newReportsWatchCmd(f *reportsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print crash events as they are recorded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := f.crashReportsDir(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w, err := report.NewWatcher(report.WatcherConfig{
				CrashReportsDir: dir,
				OnEvent: func(ev *report.EventFile, err error) {
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
						return
					}
					kind := "crash"
					if ev.Annotations.Hang != "" {
						kind = "hang"
					}
					fmt.Fprintf(out, "%s\t%s\t%s %s\n", ev.ID, kind, ev.Annotations.ProductName, ev.Annotations.Version)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", dir)
			if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				fmt.Fprintln(cmd.ErrOrStderr(), "press Ctrl+C to stop")
			}
			return w.Run(cmd.Context())
		},
	}
	return cmd
}
