package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/crxledger/internal/history"
	"github.com/spf13/cobra"
)

func newSampleMetadataCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sample-metadata [file]",
		Short: "Survey the metadata keys published on sampled detail pages",
		Long: `Scrape the detail page of every URL listed in a sample file (one per
line, default files.sample_list) and print the observed metadata keys with
example values as JSON. Pages that fail to scrape are listed, not fatal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Path(cfg.Files.SampleList)
			if len(args) == 1 {
				path = args[0]
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening sample list: %w", err)
			}
			defer func() { _ = f.Close() }()

			paths, err := history.ReadSampleList(f, limit)
			if err != nil {
				return fmt.Errorf("reading sample list: %w", err)
			}

			bar := newItemBar(len(paths), "scraping")
			s := history.NewSampler(scraper, limit)
			s.OnPage = func(done, total int) { _ = bar.Set(done) }
			rep := s.Sample(paths)
			_ = bar.Finish()

			if len(rep.Errors) > 0 {
				warn("%d of %d pages could not be scraped", len(rep.Errors), len(paths))
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10000, "Maximum pages to sample and examples kept per key")
	return cmd
}
