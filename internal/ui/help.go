package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wanderlist/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	switch mode {
	case model.ModeInsert:
		return renderFormHelp(width)
	case model.ModeSearch:
		return renderSearchHelp(width)
	case model.ModeConfirm:
		return renderConfirmHelp(width)
	}

	switch screen {
	case model.ScreenDestinations:
		return renderDestinationsHelp(width)
	case model.ScreenDestinationDetail:
		return renderDestinationDetailHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderDestinationsHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("/", "search"),
		helpKey("c/C", "category"),
		helpKey("s/S", "sort"),
		helpKey("a", "add"),
		helpKey("enter", "details"),
		helpKey("d", "delete"),
		helpKey("u/ctrl+r", "undo/redo"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderDestinationDetailHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("t", "get tips"),
		helpKey("tab", "tip type"),
		helpKey("p", "save tips"),
		helpKey("e", "edit"),
		helpKey("d", "delete"),
	}
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("shift+tab", "prev field"),
		helpKey("←/→", "category"),
		helpKey("ctrl+t", "generate tips"),
		helpKey("ctrl+s", "save"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderSearchHelp(width int) string {
	keys := []string{
		helpKey("enter", "keep search"),
		helpKey("esc", "clear search"),
	}
	return renderHelpLine(keys, width)
}

func renderConfirmHelp(width int) string {
	keys := []string{
		helpKey("y", "delete"),
		helpKey("n/esc", "keep"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(max(1, height-6)).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation (Nav Mode)"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"h / ← / esc", "Go back"},
			{"l / → / enter", "Open destination"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"u / ctrl+r", "Undo / redo"},
			{"q", "Quit (from the list)"},
			{"?", "Toggle help"},
		}),
		titleSection("Destinations"),
		helpSection([]helpItem{
			{"/", "Search name, notes and category"},
			{"c / C", "Next / previous category"},
			{"s / S", "Next / previous sort order"},
			{"a", "Add destination"},
			{"e", "Edit selected"},
			{"d", "Delete selected (asks first)"},
		}),
		titleSection("Destination Detail"),
		helpSection([]helpItem{
			{"t", "Get travel tips"},
			{"tab", "Cycle tip type"},
			{"p", "Save fetched tips to the destination"},
			{"e", "Edit"},
			{"d", "Delete"},
		}),
		titleSection("Forms (Insert/Edit Mode)"),
		helpSection([]helpItem{
			{"tab", "Next field"},
			{"shift+tab", "Previous field"},
			{"← / →", "Change category"},
			{"ctrl+t", "Generate tips for the name"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
