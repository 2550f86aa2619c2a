package app

import (
	"github.com/blackwell-systems/crxledger/internal/crx"
	"github.com/blackwell-systems/crxledger/internal/downloadlog"
	"github.com/blackwell-systems/crxledger/internal/history"
	"github.com/blackwell-systems/crxledger/internal/tui"
	"github.com/spf13/cobra"
)

func newDownloadHistoryCmd() *cobra.Command {
	var retryFailed bool

	cmd := &cobra.Command{
		Use:   "download-history",
		Short: "Download every version listed in the metadata file",
		Long: `Download the vendor CDN copy and, when linked, the mirror copy of every
version in files.metadata. Each step is appended to files.download_log, so
an interrupted run resumes where it stopped: finished attempts are skipped.`,
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
			header("%d downloads planned for %s, %d already in %s",
				len(attempts), mf.Overview.ExtensionID, len(dl.Attempts()), dl.Path())

			r := &downloadlog.Runner{
				Log:         dl,
				Fetcher:     fetcher,
				Archive:     archiveMgr,
				Prettifier:  crx.NopPrettifier{},
				RetryFailed: retryFailed,
			}
			if cfg.Prettify.Enabled {
				r.Prettifier = prettifier()
			}
			if tui.ShouldUseTUI(cmd) {
				r.Progress = tui.DownloadProgress
			}

			sum, err := r.Run(attempts)
			if err != nil {
				return err
			}
			ok("%d downloaded, %d already done", sum.Succeeded+sum.PostProcessFailed, sum.Skipped)
			if sum.PostProcessFailed > 0 {
				warn("%d downloads could not be prettified", sum.PostProcessFailed)
			}
			if sum.Failed > 0 {
				warn("%d downloads failed (see %s, rerun with --retry-failed)", sum.Failed, dl.Path())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "Retry attempts whose last state is FAILED")
	return cmd
}
