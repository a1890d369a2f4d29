package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRoot(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wercrash",
		Short:         "wercrash: Windows Error Reporting crash module tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.SetVersionTemplate("wercrash {{.Version}}\n")

	cmd.PersistentFlags().String("appdata", getenvDefault("WERCRASH_APPDATA", ""), "Roaming application data folder (defaults to the current user's)")

	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newUnregisterCmd())
	cmd.AddCommand(newModulesCmd())
	cmd.AddCommand(newAppInfoCmd())
	cmd.AddCommand(newParseCmdLineCmd())
	cmd.AddCommand(newReportsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
