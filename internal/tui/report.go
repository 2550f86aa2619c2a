package tui

import (
	"strconv"

	"github.com/blackwell-systems/crxledger/internal/installstate"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// InspectTable renders one row per multi-copy version.
func InspectTable(reports []installstate.VersionReport) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		status := "identical"
		if r.Disagree() {
			status = "DIFFERENT"
		}
		rows = append(rows, []string{r.Version, strconv.Itoa(r.Copies), strconv.Itoa(r.Checksums), status})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleBorder).
		Headers("VERSION", "COPIES", "CHECKSUM SETS", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return StyleHeader.Padding(0, 1)
			}
			if col == 3 && row >= 0 && row < len(reports) {
				if reports[row].Disagree() {
					return StyleWarn.Padding(0, 1)
				}
				return StyleOK.Padding(0, 1)
			}
			return base
		})
	return t.String()
}
