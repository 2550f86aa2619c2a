package tui

import "github.com/charmbracelet/lipgloss"

// Color palette matching the fatih/color helpers in internal/app
var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}
	ColorCyan   = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}
	ColorWhite  = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}
	ColorGray   = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}
)

// Reusable styles
var (
	StyleNormal = lipgloss.NewStyle().Foreground(ColorWhite)

	// StyleOK marks versions whose copies agree
	StyleOK = lipgloss.NewStyle().Foreground(ColorGreen)

	// StyleWarn marks versions that need manual review
	StyleWarn = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	StyleHelp = lipgloss.NewStyle().Foreground(ColorGray)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	StyleBorder = lipgloss.NewStyle().Foreground(ColorGray)
)
