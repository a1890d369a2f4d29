package cli

import (
	"github.com/spf13/cobra"

	winplat "github.com/agentsh/wercrash/internal/platform/windows"
)

// folders resolves the roaming app data folder from --appdata, falling back
// to the shell's known folder.
type folders struct {
	appData string
}

func foldersFor(cmd *cobra.Command) folders {
	v, _ := cmd.Root().PersistentFlags().GetString("appdata")
	return folders{appData: v}
}

func (f folders) RoamingAppData() (string, error) {
	if f.appData != "" {
		return f.appData, nil
	}
	return winplat.RoamingAppData()
}
