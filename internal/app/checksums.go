package app

import (
	"fmt"

	"github.com/blackwell-systems/crxledger/internal/checksum"
	"github.com/spf13/cobra"
)

func newChecksumsCmd() *cobra.Command {
	var algo string

	cmd := &cobra.Command{
		Use:   "checksums <file>",
		Short: "Print the checksums of a file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if algo != "" {
				a, err := checksum.ParseAlgorithm(algo)
				if err != nil {
					return err
				}
				sum, err := checksum.Digest(args[0], a)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sum)
				return nil
			}

			fs, err := checksum.DigestAll(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fs)
		},
	}

	cmd.Flags().StringVar(&algo, "algo", "", "Print only this digest (md5, sha1, sha256, sha512, crc32)")
	return cmd
}
