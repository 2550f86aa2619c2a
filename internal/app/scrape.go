package app

import (
	"fmt"

	"github.com/blackwell-systems/crxledger/internal/history"
	"github.com/spf13/cobra"
)

func newScrapeHistoryCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "scrape-history <extension-id>",
		Short: "Build the metadata file for every published version",
		Long: `Find the extension on the mirror, walk every page of its version
history and scrape each version's detail page. The result is written to
files.metadata, newest version first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := scraper.FetchOverview(args[0])
			if err != nil {
				return err
			}
			header("%s (history %d)", o.ExtensionID, o.SiteID)

			c := history.NewCollector(scraper)
			entries, err := c.CollectAll(o)
			if err != nil {
				return err
			}
			ok("Found %d versions", len(entries))

			bar := newItemBar(len(entries), "detail pages")
			c.OnDetail = func(done, total int) { _ = bar.Set(done) }
			mf, err := c.CollectDetails(o, entries)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			path := cfg.Path(cfg.Files.Metadata)
			if out != "" {
				path = out
			}
			if err := mf.Save(path); err != nil {
				return fmt.Errorf("writing metadata: %w", err)
			}
			ok("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default: files.metadata)")
	return cmd
}
