package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/crxledger/internal/config"
	"github.com/blackwell-systems/crxledger/internal/util"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		projectRoot string
		dataDir     string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file pointing at a project directory",
		Long: `Write a config file with every setting at its default value and
project_root set to the given directory. All pipeline files are read and
written relative to project_root.`,
		Example: `  crxledger init --project-root ~/grammarly-archive`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfig
			if path == "" {
				path = config.ConfigPath()
			}
			if util.PathExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if projectRoot == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				projectRoot = wd
			}
			cfg.ProjectRoot = config.ExpandHome(projectRoot)
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ok("Wrote %s", path)
			fmt.Fprintf(os.Stderr, "  project_root: %s\n  archive:      %s\n", cfg.ProjectRoot, cfg.ExtensionsDir())
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRoot, "project-root", "", "Project directory (default: current directory)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory relative to the project root")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
