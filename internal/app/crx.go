package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/crxledger/internal/crx"
	"github.com/blackwell-systems/crxledger/internal/fetch"
	"github.com/spf13/cobra"
)

func newFetchURLCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fetch-url <extension-id>",
		Short: "Print the vendor CDN download URL for the latest version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fetch.VendorURL(cfg.CDN, args[0])
			fmt.Fprintln(cmd.OutOrStdout(), url)
			if !check {
				return nil
			}
			resp, err := fetcher.Head(url)
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("%w: status %d", fetch.ErrNotFound, resp.Status)
			}
			ok("URL exists (status %d)", resp.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Also check that the URL resolves")
	return cmd
}

type crxKeyOutput struct {
	ID      string `json:"id"`
	Version uint32 `json:"crxVersion"`
	Key     string `json:"key"`
}

func newCrxKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crx-key <file>",
		Short: "Print the extension id and public key of a .crx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			h, err := crx.ReadHeader(f)
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			key, err := crx.ExtractPublicKey(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), crxKeyOutput{ID: h.ExtensionID(), Version: h.Version, Key: key})
		},
	}
}
