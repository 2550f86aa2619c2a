package app

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/crxledger/internal/downloadlog"
	"github.com/blackwell-systems/crxledger/internal/history"
	"github.com/blackwell-systems/crxledger/internal/installstate"
	"github.com/blackwell-systems/crxledger/internal/reconcile"
	"github.com/blackwell-systems/crxledger/internal/tui"
	"github.com/spf13/cobra"
)

func newInstallStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install-state",
		Short: "Verify archived copies against published checksums",
		Long: `For every planned download with a finished log entry, compute the
checksums of the archived file and compare them with the ones the mirror
published. Copies that already matched are not recomputed. Results are
written to files.install_state after every item.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := history.LoadMetadata(cfg.Path(cfg.Files.Metadata))
			if err != nil {
				return err
			}
			dl, err := downloadlog.Open(cfg.Path(cfg.Files.DownloadLog))
			if err != nil {
				return err
			}
			attempts, err := downloadlog.Plan(mf, archiveMgr)
			if err != nil {
				return err
			}

			store := installstate.NewStore(cfg.Path(cfg.Files.InstallState))
			existing, err := store.Load()
			if err != nil && !errors.Is(err, installstate.ErrStoreMissing) {
				return err
			}

			eng := reconcile.NewEngine(store)
			bar := newItemBar(len(attempts), "verifying")
			eng.OnItem = func(done, total int, a downloadlog.Attempt) { _ = bar.Set(done) }
			entries, err := eng.Reconcile(existing, dl, mf, attempts)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			verified, falseAlarms := 0, 0
			for _, e := range entries {
				if e.Verified() {
					verified++
				} else {
					warn("%s (%s): checksums do not match", e.VersionDetail.Version, e.DownloadState.Source)
				}
				if e.PotentialFalseAlarm {
					falseAlarms++
				}
			}
			ok("%d of %d copies verified", verified, len(entries))
			if falseAlarms > 0 {
				warn("%d copies were logged as failed downloads but checked anyway", falseAlarms)
			}
			ok("Wrote %s", store.Path())
			return nil
		},
	}
}

func newInstallStateByVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install-state-by-version",
		Short: "Group verified copies by version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := installstate.NewStore(cfg.Path(cfg.Files.InstallState)).Load()
			if err != nil {
				return err
			}
			bv := installstate.GroupByVersion(entries)
			for _, v := range bv.Versions() {
				if n := len(bv[v].Warnings); n > 0 {
					warn("%s: %d duplicate entries", v, n)
				}
			}

			path := cfg.Path(cfg.Files.InstallStateByVersion)
			if err := installstate.SaveByVersion(path, bv); err != nil {
				return err
			}
			ok("Wrote %d versions to %s", len(bv), path)
			return nil
		},
	}
}

func newInspectInstallStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect-install-state",
		Short: "Show how many copies each version has and whether they agree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bv, err := installstate.LoadByVersion(cfg.Path(cfg.Files.InstallStateByVersion))
			if err != nil {
				return err
			}
			reports := installstate.Inspect(bv)
			if len(reports) == 0 {
				ok("No version has more than one copy")
				return nil
			}

			if tui.ShouldUseTUI(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), tui.InspectTable(reports))
			} else {
				for _, r := range reports {
					fmt.Fprintln(cmd.OutOrStdout(), r.Version, r.Copies)
				}
			}
			for _, r := range reports {
				if r.Disagree() {
					warn("VERSION: %s has different checksums", r.Version)
				}
			}
			return nil
		},
	}
}
