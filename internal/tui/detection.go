package tui

import (
	"github.com/blackwell-systems/crxledger/internal/util"
	"github.com/spf13/cobra"
)

// ShouldUseTUI returns true if the command should draw interactive
// progress. It is off when stdout is not a terminal or --no-interactive
// is set.
func ShouldUseTUI(cmd *cobra.Command) bool {
	if !util.IsTTY() {
		return false
	}
	noInteractive, _ := cmd.Flags().GetBool("no-interactive")
	return !noInteractive
}
