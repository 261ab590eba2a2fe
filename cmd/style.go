package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	chipPink   = "#dd81c7"
	chipRed    = "#7b2165"
	greenLight = "#56949f"
	greenDark  = "#9ccfd8"
	mutedLight = "#797593"
	mutedDark  = "#6e6a86"
)

var (
	accent = lipgloss.AdaptiveColor{Dark: greenDark, Light: greenLight}
	main   = lipgloss.AdaptiveColor{Dark: chipPink, Light: chipRed}
	muted  = lipgloss.AdaptiveColor{Dark: mutedDark, Light: mutedLight}

	titleStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(main).
			Bold(true)
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(accent).
			Bold(true)
	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)
	dimStyle = lipgloss.NewStyle().
			Foreground(muted)
)

// newTable returns a table in the house style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}
