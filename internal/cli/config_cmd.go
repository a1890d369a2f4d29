package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentsh/wercrash/internal/config"
)

func newConfigCmd() *cobra.Command {
	var path, installDir string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the crash module configuration",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "Config file path")
	cmd.PersistentFlags().StringVar(&installDir, "install-dir", "", "Install directory holding "+config.FileName)

	load := func() (*config.Config, error) {
		switch {
		case path != "":
			return config.Load(path)
		case installDir != "":
			return config.LoadOptional(filepath.Join(installDir, config.FileName))
		default:
			return config.LoadOptional(config.FileName)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show resolved config (after defaults and env overrides)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := load(); err != nil {
				return exitErrorf(2, "invalid config: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	})

	return cmd
}
