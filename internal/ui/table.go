package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const tableSeparator = " │ "

func tableSeparatorWidth() int {
	return lipgloss.Width(tableSeparator)
}

// renderTableRow renders left-aligned cells.
func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	aligns := make([]lipgloss.Position, len(cells))
	for i := range aligns {
		aligns[i] = lipgloss.Left
	}
	return renderTableRowWithAligns(cells, widths, aligns, style)
}

func renderTableRowWithAligns(cells []string, widths []int, aligns []lipgloss.Position, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		align := lipgloss.Left
		if i < len(aligns) {
			align = aligns[i]
		}
		parts = append(parts, style.Width(widths[i]).MaxHeight(1).Align(align).Render(cell))
	}
	sep := style.Render(tableSeparator)
	return strings.Join(parts, sep)
}

func renderTableDivider(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Join(parts, "─┼─"))
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return lipgloss.NewStyle().Underline(true).Render(label)
}
