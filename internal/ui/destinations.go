package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlist/internal/model"
	"wanderlist/internal/query"
	"wanderlist/internal/util"
)

type destinationColumn struct {
	key   string
	label string
	width int
}

// DestinationsModel is the filtered, sorted destination table.
type DestinationsModel struct {
	all     []model.Destination
	rows    []model.Destination
	cursor  int
	offset  int
	columns []destinationColumn

	search   textinput.Model
	category string
	sort     query.SortKey
	now      func() time.Time
}

// NewDestinationsModel creates the list screen over the given collection.
func NewDestinationsModel(items []model.Destination, prefs UIPreferences) *DestinationsModel {
	in := textinput.New()
	in.Placeholder = "Search name, notes or category"
	in.Prompt = "/ "
	in.CharLimit = 100

	sortKey, ok := query.ParseSortKey(prefs.Sort)
	if !ok {
		sortKey = query.DefaultSort
	}
	category := prefs.Category
	if category == "" {
		category = model.CategoryAll
	}

	m := &DestinationsModel{
		columns: []destinationColumn{
			{key: "name", label: "name", width: 22},
			{key: "category", label: "category", width: 14},
			{key: "rating", label: "rating", width: 7},
			{key: "added", label: "added", width: 12},
			{key: "notes", label: "notes", width: 30},
		},
		search:   in,
		category: category,
		sort:     sortKey,
		now:      time.Now,
	}
	m.SetItems(items)
	return m
}

// SetItems replaces the underlying collection and reapplies the query,
// keeping the cursor on the same destination when it is still listed.
func (m *DestinationsModel) SetItems(items []model.Destination) {
	selected := ""
	if d := m.Selected(); d != nil {
		selected = d.ID
	}
	m.all = items
	m.rebuild()
	if selected != "" {
		m.SelectID(selected)
	}
}

// Options returns the query currently applied.
func (m *DestinationsModel) Options() query.Options {
	return query.Options{
		SearchText: m.search.Value(),
		Category:   m.category,
		Sort:       m.sort,
	}
}

func (m *DestinationsModel) rebuild() {
	m.rows = query.Run(m.all, m.Options())
	m.clampCursor()
}

func (m *DestinationsModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// Prefs returns the sort and category to persist.
func (m *DestinationsModel) Prefs(base UIPreferences) UIPreferences {
	base.Sort = string(m.sort)
	base.Category = m.category
	return base
}

// CycleCategory steps through All and the fixed categories.
func (m *DestinationsModel) CycleCategory(step int) string {
	cats := query.Categories()
	idx := 0
	for i, c := range cats {
		if c == m.category {
			idx = i
			break
		}
	}
	idx = (idx + step + len(cats)) % len(cats)
	m.category = cats[idx]
	m.rebuild()
	return "Category: " + m.category
}

// CycleSort steps through the sort keys.
func (m *DestinationsModel) CycleSort(step int) string {
	keys := query.SortKeys()
	idx := 0
	for i, k := range keys {
		if k == m.sort {
			idx = i
			break
		}
	}
	idx = (idx + step + len(keys)) % len(keys)
	m.sort = keys[idx]
	m.rebuild()
	return "Sort: " + m.sort.Label()
}

// StartSearch focuses the search box.
func (m *DestinationsModel) StartSearch() tea.Cmd {
	return m.search.Focus()
}

// StopSearch leaves the search box. clear also drops the search text.
func (m *DestinationsModel) StopSearch(clear bool) {
	if clear {
		m.search.SetValue("")
	}
	m.search.Blur()
	m.rebuild()
}

// UpdateSearch feeds a key to the search box and refilters.
func (m *DestinationsModel) UpdateSearch(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	m.offset = 0
	m.rebuild()
	return cmd
}

// Selected returns the destination under the cursor.
func (m *DestinationsModel) Selected() *model.Destination {
	if len(m.rows) == 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

// SelectID moves the cursor to id if it is listed.
func (m *DestinationsModel) SelectID(id string) bool {
	for i, d := range m.rows {
		if d.ID == id {
			m.cursor = i
			if m.offset > m.cursor {
				m.offset = m.cursor
			}
			return true
		}
	}
	return false
}

// MoveDown moves the cursor down.
func (m *DestinationsModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
	}
}

// MoveUp moves the cursor up.
func (m *DestinationsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset = m.cursor
		}
	}
}

// JumpToTop jumps to the first row.
func (m *DestinationsModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last row.
func (m *DestinationsModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
	}
}

// HalfPageDown moves down half a page.
func (m *DestinationsModel) HalfPageDown(pageSize int) {
	m.cursor += max(1, pageSize/2)
	m.clampCursor()
}

// HalfPageUp moves up half a page.
func (m *DestinationsModel) HalfPageUp(pageSize int) {
	m.cursor -= max(1, pageSize/2)
	m.clampCursor()
}

func (m *DestinationsModel) sortColumn() (string, bool) {
	switch m.sort {
	case query.SortNameAsc:
		return "name", false
	case query.SortNameDesc:
		return "name", true
	case query.SortRatingAsc:
		return "rating", false
	case query.SortRatingDesc:
		return "rating", true
	case query.SortDateAsc:
		return "added", false
	case query.SortDateDesc:
		return "added", true
	default:
		return "", false
	}
}

func (m *DestinationsModel) cell(d model.Destination, key string, width int) string {
	switch key {
	case "name":
		return util.TruncateString(d.Name, width)
	case "category":
		return util.TruncateString(d.Category, width)
	case "rating":
		return lipgloss.NewStyle().Foreground(ColorYellow).Render(fmt.Sprintf("%d ★", d.Rating))
	case "added":
		return util.FormatCreatedAtHuman(d.CreatedAt, m.now())
	case "notes":
		return util.TruncateString(util.FirstLine(d.Notes), width)
	default:
		return ""
	}
}

// filterBar shows the search box and the active category and sort.
func (m *DestinationsModel) filterBar(width int) string {
	search := m.search.View()
	if !m.search.Focused() && m.search.Value() == "" {
		search = HelpDescStyle.Render("/ search")
	}
	right := HelpKeyStyle.Render("category ") + HelpDescStyle.Render(m.category) +
		"  " + HelpKeyStyle.Render("sort ") + HelpDescStyle.Render(m.sort.Label())
	padding := max(1, width-lipgloss.Width(search)-lipgloss.Width(right)-4)
	return StatusBarStyle.Render(search + strings.Repeat(" ", padding) + right)
}

// View renders the destination table.
func (m *DestinationsModel) View(width, height int) string {
	bar := m.filterBar(width)

	if len(m.rows) == 0 {
		emptyMsg := `    No destinations yet.
    Press  a  to add one!`
		if len(m.all) > 0 {
			emptyMsg = `    No destinations match.
    Clear the search or press  c  to change category.`
		}
		body := EmptyStateStyle.Width(width).Height(max(1, height-1)).Render(emptyMsg)
		return lipgloss.JoinVertical(lipgloss.Left, bar, body)
	}

	sortKey, sortDesc := m.sortColumn()
	widths := make([]int, 0, len(m.columns))
	headers := make([]string, 0, len(m.columns))
	totalFixed := 0
	for _, col := range m.columns {
		label := formatHeaderLabel(col.label)
		if col.key == sortKey {
			label = renderActiveHeaderLabel(label)
			if sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		cellWidth := max(col.width, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	sepTotal := (len(widths) - 1) * tableSeparatorWidth()
	if extra := width - totalFixed - sepTotal - 2; extra > 0 {
		widths[len(widths)-1] += extra
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-5)
	if m.cursor >= m.offset+visibleHeight {
		m.offset = m.cursor - visibleHeight + 1
	}

	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		d := m.rows[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, 0, len(m.columns))
		aligns := make([]lipgloss.Position, 0, len(m.columns))
		for j, col := range m.columns {
			cells = append(cells, m.cell(d, col.key, widths[j]))
			if col.key == "rating" {
				aligns = append(aligns, lipgloss.Center)
			} else {
				aligns = append(aligns, lipgloss.Left)
			}
		}
		rows = append(rows, renderTableRowWithAligns(cells, widths, aligns, style))
	}

	filterInfo := ""
	if len(m.rows) != len(m.all) {
		filterInfo = fmt.Sprintf("  ·  showing %d of %d", len(m.rows), len(m.all))
	}
	status := StatusBarStyle.Render(fmt.Sprintf("Destinations: %d  ·  row %d/%d%s",
		len(m.all), m.cursor+1, len(m.rows), filterInfo))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		bar,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}
