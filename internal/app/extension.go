package app

import (
	"fmt"
	"path/filepath"

	"github.com/blackwell-systems/crxledger/internal/cache"
	"github.com/blackwell-systems/crxledger/internal/crx"
	"github.com/blackwell-systems/crxledger/internal/downloadlog"
	"github.com/blackwell-systems/crxledger/internal/fetch"
	"github.com/blackwell-systems/crxledger/internal/tui"
	"github.com/spf13/cobra"
)

// extensionPaths resolves the unpack directory and crx path of a single
// download. The crx sits next to the directory unless given explicitly.
func extensionPaths(extensionID, dir, zip string) (string, string) {
	if dir == "" {
		dir = filepath.Join(cfg.ExtensionsDir(), extensionID)
	}
	if zip == "" {
		zip = dir + ".crx"
	}
	return dir, zip
}

func newDownloadExtensionCmd() *cobra.Command {
	var (
		downloadURL   string
		extensionPath string
		zipPath       string
		keepZip       bool
		overwrite     bool
		prettify      bool
		doNotWriteKey bool
	)

	cmd := &cobra.Command{
		Use:   "download-extension <extension-id>",
		Short: "Download and unpack the latest version of one extension",
		Long: `Download one extension outside the history pipeline. Nothing is written
to the download log. By default the latest release is fetched from the
vendor CDN into <data_dir>/extensions/<id>.`,
		Example: `  crxledger download-extension aapbdbdomjkkjkaonfhkkikfgjllcleb --prettify
  crxledger download-extension aapbdbdomjkkjkaonfhkkikfgjllcleb --url https://example.com/ext.crx --keep-zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			dir, zip := extensionPaths(id, extensionPath, zipPath)

			if archiveMgr.Exists(dir) {
				if !overwrite {
					ok("%s: exists. Pass --overwrite to overwrite it.", id)
					return nil
				}
				warn("%s: exists, overwriting...", id)
			} else {
				header("%s: downloading...", id)
			}

			a := downloadlog.Attempt{
				ExtensionID:        id,
				Version:            "latest",
				Source:             cache.VendorSource,
				DownloadURL:        downloadURL,
				ExtensionPath:      dir,
				ExtensionZipPath:   zip,
				KeepZip:            keepZip,
				WriteKeyToManifest: !doNotWriteKey,
			}
			if a.DownloadURL == "" {
				a.DownloadURL = fetch.VendorURL(cfg.CDN, id)
			} else {
				a.Source = "url"
			}

			r := &downloadlog.Runner{Fetcher: fetcher, Archive: archiveMgr}
			if tui.ShouldUseTUI(cmd) {
				r.Progress = tui.DownloadProgress
			}
			if err := r.Download(a); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}

			if !prettify {
				ok("%s: downloaded to %s", id, dir)
				return nil
			}
			if err := prettifier().Format(dir); err != nil {
				warn("%s: downloaded, but prettifying failed: %v", id, err)
				return nil
			}
			ok("%s: downloaded and prettified at %s", id, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&downloadURL, "url", "", "Download from this .crx URL instead of the vendor CDN")
	cmd.Flags().StringVar(&extensionPath, "extension-path", "", "Unpack into this directory")
	cmd.Flags().StringVar(&zipPath, "extension-zip-path", "", "Store the .crx here (default: <extension-path>.crx)")
	cmd.Flags().BoolVar(&keepZip, "keep-zip", false, "Keep the .crx after unpacking")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing unpacked copy")
	cmd.Flags().BoolVar(&prettify, "prettify", false, "Run the configured formatter on the unpacked copy")
	cmd.Flags().BoolVar(&doNotWriteKey, "do-not-write-key-to-manifest", false, "Leave manifest.json without the public key")
	return cmd
}

// prettifier returns the configured formatter. Explicit prettify commands
// run it even when prettify.enabled is off.
func prettifier() crx.Prettifier {
	return crx.CommandPrettifier{Command: cfg.Prettify.Command, Args: cfg.Prettify.Args}
}

func newPrettifyExtensionCmd() *cobra.Command {
	var extensionPath string

	cmd := &cobra.Command{
		Use:   "prettify-extension <extension-id>",
		Short: "Run the configured formatter on an unpacked extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			dir, _ := extensionPaths(id, extensionPath, "")
			if !archiveMgr.Exists(dir) {
				return fmt.Errorf("%s: does not exist at %s", id, dir)
			}
			if err := prettifier().Format(dir); err != nil {
				warn("%s: formatter reported errors, ignoring: %v", id, err)
			}
			ok("%s: prettified at %s", id, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&extensionPath, "extension-path", "", "Unpacked extension directory (default: <data_dir>/extensions/<id>)")
	return cmd
}

func newLatestVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest-versions <id[,id...]>",
		Short: "Ask the vendor update service for the latest release of extensions",
		Long: `Post an update check for one or more comma-separated extension ids and
print the service's JSON answer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := fetch.SplitIDs(args[0])
			if len(ids) == 0 {
				return fmt.Errorf("no extension ids in %q", args[0])
			}
			raw, err := fetcher.CheckUpdates(cfg.CDN, ids)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
}
