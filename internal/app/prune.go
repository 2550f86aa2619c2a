package app

import (
	"fmt"

	"github.com/blackwell-systems/crxledger/internal/installstate"
	"github.com/blackwell-systems/crxledger/internal/prune"
	"github.com/spf13/cobra"
)

func newCreatePruneScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-prune-script",
		Short: "Write a shell script deleting identical duplicate copies",
		Long: `For every version with more than one archived copy whose checksums
all agree, plan deletion of every copy except the vendor CDN one. The
script is printed and written to files.prune_script; nothing is deleted
until you run it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bv, err := installstate.LoadByVersion(cfg.Path(cfg.Files.InstallStateByVersion))
			if err != nil {
				return err
			}
			res := prune.Plan(bv)
			for _, r := range res.Review {
				warn("VERSION: %s %s", r.Version, r.Reason)
			}

			path := cfg.Path(cfg.Files.PruneScript)
			if err := prune.WriteScript(path, res); err != nil {
				return fmt.Errorf("writing prune script: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Script())
			ok("%d duplicates planned for deletion, also wrote %s", res.DeletionsPlanned, path)
			return nil
		},
	}
}
