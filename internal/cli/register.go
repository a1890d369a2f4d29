package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	winplat "github.com/agentsh/wercrash/internal/platform/windows"
)

// DefaultModuleName is the DLL looked for next to the CLI when no path is
// given.
const DefaultModuleName = "wercrash-module.dll"

func newRegisterCmd() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "register [DLL]",
		Short: "Register the crash module with Windows Error Reporting",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, path, err := moduleArgs(scope, args)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("module: %w", err)
			}
			if err := winplat.RegisterModule(sc, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", path, sc)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "user", "Registration scope: user|machine")
	return cmd
}

func newUnregisterCmd() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "unregister [DLL]",
		Short: "Remove the crash module registration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, path, err := moduleArgs(scope, args)
			if err != nil {
				return err
			}
			if err := winplat.UnregisterModule(sc, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unregistered %s (%s)\n", path, sc)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "user", "Registration scope: user|machine")
	return cmd
}

func newModulesCmd() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List registered runtime exception modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := winplat.ParseScope(scope)
			if err != nil {
				return err
			}
			mods, err := winplat.RegisteredModules(sc)
			if err != nil {
				return err
			}
			for _, m := range mods {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "user", "Registration scope: user|machine")
	return cmd
}

// moduleArgs resolves the scope flag and the module path, which defaults to
// DefaultModuleName beside the running executable.
func moduleArgs(scope string, args []string) (winplat.Scope, string, error) {
	sc, err := winplat.ParseScope(scope)
	if err != nil {
		return 0, "", err
	}
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		exe, err := os.Executable()
		if err != nil {
			return 0, "", fmt.Errorf("locate executable: %w", err)
		}
		path = filepath.Join(filepath.Dir(exe), DefaultModuleName)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, "", err
	}
	return sc, abs, nil
}
