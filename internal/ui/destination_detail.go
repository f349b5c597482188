package ui

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlist/internal/model"
	"wanderlist/internal/tips"
	"wanderlist/internal/util"
)

const (
	previewWidth  = 40
	previewHeight = 12
)

// DestinationDetailModel represents the destination detail screen.
type DestinationDetailModel struct {
	dest model.Destination
	caps TerminalCapabilities
	live bool

	tipType tips.Type
	tipText string
	tipSeq  int
	pending bool
	spinner spinner.Model

	preview    string
	previewErr string
}

// NewDestinationDetailModel creates a new destination detail model.
func NewDestinationDetailModel(d model.Destination, caps TerminalCapabilities, tipType tips.Type, live bool) *DestinationDetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &DestinationDetailModel{
		dest:    d,
		caps:    caps,
		live:    live,
		tipType: tips.ParseType(string(tipType)),
		spinner: sp,
	}
	m.renderPreview()
	return m
}

func (m *DestinationDetailModel) renderPreview() {
	m.preview, m.previewErr = "", ""
	ref := m.dest.ActiveImage()
	if ref.Kind != model.ImageInline {
		return
	}
	out, err := RenderInlineImage(ref.Value, m.caps, previewWidth, previewHeight)
	if err != nil {
		m.previewErr = err.Error()
		return
	}
	m.preview = out
}

// SetDestination refreshes the shown record, keeping fetched tips.
func (m *DestinationDetailModel) SetDestination(d model.Destination) {
	imageChanged := d.ImageBase64 != m.dest.ImageBase64
	m.dest = d
	if imageChanged {
		m.renderPreview()
	}
}

// CycleTipType moves to the next tip type and drops tips of the old one.
func (m *DestinationDetailModel) CycleTipType() tips.Type {
	all := tips.Types()
	for i, t := range all {
		if t == m.tipType {
			m.tipType = all[(i+1)%len(all)]
			break
		}
	}
	m.tipText = ""
	m.pending = false
	return m.tipType
}

// StartTips marks a request as pending and returns its sequence number.
func (m *DestinationDetailModel) StartTips() (int, tea.Cmd) {
	m.tipSeq++
	m.pending = true
	m.tipText = ""
	return m.tipSeq, m.spinner.Tick
}

// ApplyTips stores a tip result. Results for an older request or another
// type are ignored.
func (m *DestinationDetailModel) ApplyTips(msg model.TipsLoadedMsg) bool {
	if msg.Seq != m.tipSeq || msg.Type != string(m.tipType) || msg.Place != m.dest.Name {
		return false
	}
	m.pending = false
	if msg.Err != nil {
		m.tipText = ""
		return true
	}
	m.tipText = msg.Text
	return true
}

// FetchedTips returns tips ready to be saved into the record.
func (m *DestinationDetailModel) FetchedTips() (string, bool) {
	if m.pending || strings.TrimSpace(m.tipText) == "" {
		return "", false
	}
	return m.tipText, true
}

// Update advances the spinner.
func (m *DestinationDetailModel) Update(msg tea.Msg) tea.Cmd {
	if tick, ok := msg.(spinner.TickMsg); ok && m.pending {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return cmd
	}
	return nil
}

func (m *DestinationDetailModel) extraFields() []string {
	keys := make([]string, 0, len(m.dest.Extra))
	for k := range m.dest.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []string
	for _, k := range keys {
		fields = append(fields, renderField(k, formatExtra(m.dest.Extra[k])))
	}
	return fields
}

// formatExtra shows strings and string lists plainly and anything else as JSON.
func formatExtra(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return string(raw)
}

// View renders the destination detail.
func (m *DestinationDetailModel) View(width, height int) string {
	shortcuts := HelpDescStyle.Render("t tips  tab tip type  p save tips  e edit  d delete  h back")
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	var sections []string

	var fields []string
	fields = append(fields, renderField("Name", m.dest.Name))
	fields = append(fields, renderField("Category", m.dest.Category))
	fields = append(fields, LabelStyle.Render("Rating:")+" "+
		lipgloss.NewStyle().Foreground(ColorYellow).Render(util.FormatRatingStars(m.dest.Rating)))
	fields = append(fields, renderField("Added", util.FormatCreatedAt(m.dest.CreatedAt)))
	switch ref := m.dest.ActiveImage(); ref.Kind {
	case model.ImageURL:
		fields = append(fields, renderField("Image", ref.Value))
	case model.ImageInline:
		fields = append(fields, renderField("Image", "uploaded, "+util.FormatBytes(len(ref.Value))))
	}
	fields = append(fields, m.extraFields()...)
	sections = append(sections, strings.Join(fields, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))

	if m.dest.Notes != "" {
		sections = append(sections, divider, LabelStyle.Render("Notes:"), NormalRowStyle.Render(m.dest.Notes))
	}
	if m.dest.AITips != "" {
		sections = append(sections, divider, LabelStyle.Render("Saved Tips:"), NormalRowStyle.Render(m.dest.AITips))
	}

	sections = append(sections, divider, m.tipsSection())

	if m.preview != "" {
		sections = append(sections, divider, m.preview)
	} else if m.previewErr != "" {
		sections = append(sections, divider, ErrorStyle.Render("Image preview unavailable: "+m.previewErr))
	}

	info := PanelStyle.
		Width(width - 4).
		Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, info)
}

func (m *DestinationDetailModel) tipsSection() string {
	source := "offline tips"
	if m.live {
		source = "AI tips"
	}
	title := LabelStyle.Render(m.tipType.Label()+":") + " " + HelpDescStyle.Render("("+source+")")

	switch {
	case m.pending:
		return title + "\n" + HelpDescStyle.Render(m.spinner.View()+" Fetching tips...")
	case m.tipText != "":
		return title + "\n" + NormalRowStyle.Render(m.tipText)
	default:
		return title + "\n" + HelpDescStyle.Render("Press t to get tips")
	}
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
