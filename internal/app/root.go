package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/blackwell-systems/crxledger/internal/cache"
	"github.com/blackwell-systems/crxledger/internal/config"
	"github.com/blackwell-systems/crxledger/internal/crx4chrome"
	"github.com/blackwell-systems/crxledger/internal/fetch"
	"github.com/blackwell-systems/crxledger/internal/logger"
	"github.com/blackwell-systems/crxledger/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	scraper    *crx4chrome.Client
	fetcher    *fetch.Client
	archiveMgr *cache.Manager

	flagNoColor       bool
	flagNoInteractive bool
	flagConfig        string
)

// Execute is the entry point called from main.
func Execute() {
	defer logger.Sync()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// needsProject reports whether cmd reads or writes project files.
func needsProject(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "init", "version", "checksums", "crx-key", "fetch-url", "latest-versions", "help", "completion":
		return false
	}
	return true
}

func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.LoadFile(flagConfig)
	}
	return config.Load()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crxledger",
		Short: "Archive browser extension version history and verify it",
		Long: `crxledger archives every published version of a browser extension
from the crx4chrome mirror and the vendor CDN, then checks each archived
file against the checksums the mirror published.

Pipeline:
  scrape-history <id>     build the metadata file
  download-history        download every version, logging each step
  install-state           verify checksums of archived copies
  install-state-by-version
  create-prune-script     plan removal of identical duplicates`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive progress display")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/crxledger/config.yml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		var err error
		cfg, err = loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := logger.Init(cfg.Log.Level); err != nil {
			return err
		}

		if needsProject(cmd) {
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		// No client timeouts: slow mirrors are waited out.
		httpClient := &http.Client{}
		scraper = crx4chrome.New(cfg.Scraper.BaseURL, cfg.Scraper.UserAgent, httpClient)
		fetcher = fetch.New(cfg.Scraper.UserAgent, httpClient)
		archiveMgr = cache.New(cfg.ExtensionsDir())
		return nil
	}

	// Register sub-commands.
	rootCmd.AddCommand(
		newInitCmd(),
		newSampleMetadataCmd(),
		newScrapeHistoryCmd(),
		newDownloadHistoryCmd(),
		newChecksumsCmd(),
		newInstallStateCmd(),
		newInstallStateByVersionCmd(),
		newInspectInstallStateCmd(),
		newCreatePruneScriptCmd(),
		newFetchURLCmd(),
		newCrxKeyCmd(),
		newDownloadExtensionCmd(),
		newPrettifyExtensionCmd(),
		newLatestVersionsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.CyanString(fmt.Sprintf(format, a...)))
}
