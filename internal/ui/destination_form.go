package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlist/internal/destinations"
	"wanderlist/internal/model"
	"wanderlist/internal/tips"
	"wanderlist/internal/util"
)

const (
	fieldName = iota
	fieldCategory
	fieldRating
	fieldNotes
	fieldImageURL
	fieldImageFile
	fieldTips
	fieldCount
)

// DestinationFormModel is the add/edit form.
type DestinationFormModel struct {
	service  *destinations.Service
	provider *tips.Provider
	keys     FormKeyMap

	editing  *model.Destination
	focused  int
	inputs   map[int]*textinput.Model
	category string
	aiTips   textarea.Model
	error    string

	tipSeq     int
	generating bool
	spinner    spinner.Model
}

func newFormInput(placeholder string, limit int) *textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return &in
}

// NewDestinationFormModel creates an empty form for a new destination.
func NewDestinationFormModel(svc *destinations.Service, provider *tips.Provider, keys FormKeyMap) *DestinationFormModel {
	ta := textarea.New()
	ta.Placeholder = "Travel tips (ctrl+t to generate)"
	ta.SetHeight(4)
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &DestinationFormModel{
		service:  svc,
		provider: provider,
		keys:     keys,
		inputs: map[int]*textinput.Model{
			fieldName:      newFormInput("Destination name", 100),
			fieldRating:    newFormInput("1-5 (default 3)", 1),
			fieldNotes:     newFormInput("Why you want to go...", 1000),
			fieldImageURL:  newFormInput("https://...", 2000),
			fieldImageFile: newFormInput("Path to a local image (optional)", 1000),
		},
		category: model.DefaultCategory,
		aiTips:   ta,
		spinner:  sp,
	}
	m.inputs[fieldRating].SetValue(strconv.Itoa(model.DefaultRating))
	m.inputs[fieldName].Focus()
	return m
}

// LoadDestination fills the form for editing d.
func (m *DestinationFormModel) LoadDestination(d model.Destination) {
	before := d.Clone()
	m.editing = &before
	m.inputs[fieldName].SetValue(d.Name)
	m.category = d.Category
	m.inputs[fieldRating].SetValue(strconv.Itoa(d.Rating))
	m.inputs[fieldNotes].SetValue(d.Notes)
	m.inputs[fieldImageURL].SetValue(d.ImageURL)
	m.aiTips.SetValue(d.AITips)
}

// Editing reports whether the form edits an existing destination.
func (m *DestinationFormModel) Editing() bool {
	return m.editing != nil
}

// Update handles input.
func (m DestinationFormModel) Update(msg tea.Msg) (DestinationFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case model.TipsLoadedMsg:
		if msg.Seq == m.tipSeq && m.generating {
			m.generating = false
			if msg.Err != nil {
				m.error = msg.Err.Error()
			} else {
				m.aiTips.SetValue(msg.Text)
				m.error = ""
			}
		}
		return m, nil
	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.focused == fieldTips {
			var cmd tea.Cmd
			m.aiTips, cmd = m.aiTips.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case key.Matches(keyMsg, m.keys.Save):
		return m, m.save()
	case key.Matches(keyMsg, m.keys.GenerateTips):
		return m, m.generateTips()
	case key.Matches(keyMsg, m.keys.NextField):
		return m, m.setFocus((m.focused + 1) % fieldCount)
	case key.Matches(keyMsg, m.keys.PrevField):
		return m, m.setFocus((m.focused - 1 + fieldCount) % fieldCount)
	}

	switch m.focused {
	case fieldCategory:
		switch keyMsg.String() {
		case "right", "l", " ":
			m.cycleCategory(1)
		case "left", "h":
			m.cycleCategory(-1)
		}
		return m, nil
	case fieldTips:
		var cmd tea.Cmd
		m.aiTips, cmd = m.aiTips.Update(keyMsg)
		return m, cmd
	default:
		var cmd tea.Cmd
		in := *m.inputs[m.focused]
		in, cmd = in.Update(keyMsg)
		m.inputs[m.focused] = &in
		return m, cmd
	}
}

func (m *DestinationFormModel) setFocus(field int) tea.Cmd {
	if in, ok := m.inputs[m.focused]; ok {
		in.Blur()
	}
	if m.focused == fieldTips {
		m.aiTips.Blur()
	}
	m.focused = field
	if in, ok := m.inputs[field]; ok {
		return in.Focus()
	}
	if field == fieldTips {
		return m.aiTips.Focus()
	}
	return nil
}

func (m *DestinationFormModel) cycleCategory(step int) {
	cats := model.Categories()
	idx := -1
	for i, c := range cats {
		if c == m.category {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Legacy categories re-enter the fixed list at its start.
		m.category = cats[0]
		return
	}
	m.category = cats[(idx+step+len(cats))%len(cats)]
}

func (m *DestinationFormModel) generateTips() tea.Cmd {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	if name == "" {
		m.error = "Enter a destination name first"
		return nil
	}
	if m.provider == nil {
		return nil
	}
	m.tipSeq++
	m.generating = true
	m.error = ""
	return tea.Batch(m.spinner.Tick, fetchTipsCmd(m.provider, m.tipSeq, name, tips.Facts))
}

// values reads and validates the form fields.
func (m *DestinationFormModel) values() (model.NewDestination, error) {
	name := m.inputs[fieldName].Value()
	if strings.TrimSpace(name) == "" {
		return model.NewDestination{}, errors.New("destination name is required")
	}
	rating, err := util.ParseRatingInput(m.inputs[fieldRating].Value())
	if err != nil {
		return model.NewDestination{}, err
	}
	if rating == 0 {
		rating = model.DefaultRating
	}

	v := model.NewDestination{
		Name:     name,
		Category: m.category,
		Rating:   rating,
		Notes:    m.inputs[fieldNotes].Value(),
		ImageURL: strings.TrimSpace(m.inputs[fieldImageURL].Value()),
		AITips:   m.aiTips.Value(),
	}
	if path := strings.TrimSpace(m.inputs[fieldImageFile].Value()); path != "" {
		dataURL, err := util.ImageFileToDataURL(path)
		if err != nil {
			return model.NewDestination{}, err
		}
		v.ImageBase64 = dataURL
	}
	return v, nil
}

// patch builds an update from the form relative to the edited record.
func (m *DestinationFormModel) patch(v model.NewDestination) model.DestinationPatch {
	before := m.editing
	p := model.DestinationPatch{
		Name:     &v.Name,
		Category: &v.Category,
		Rating:   &v.Rating,
		Notes:    &v.Notes,
		AITips:   &v.AITips,
	}
	switch {
	case v.ImageBase64 != "":
		p.ImageBase64 = &v.ImageBase64
	case v.ImageURL != before.ImageURL:
		p.ImageURL = &v.ImageURL
	}
	return p
}

func (m *DestinationFormModel) save() tea.Cmd {
	v, err := m.values()
	if err != nil {
		return func() tea.Msg { return model.ErrorMsg{Err: err} }
	}
	svc := m.service
	if m.editing == nil {
		return func() tea.Msg {
			d, err := svc.Add(context.Background(), v)
			if err != nil {
				return model.ErrorMsg{Err: err}
			}
			return model.DestinationSavedMsg{Operation: "insert", After: d, Index: svc.IndexOf(d.ID)}
		}
	}

	before := m.editing.Clone()
	patch := m.patch(v)
	return func() tea.Msg {
		after, found, err := svc.Update(context.Background(), before.ID, patch)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		if !found {
			return model.ErrorMsg{Err: fmt.Errorf("destination %q no longer exists", before.Name)}
		}
		return model.DestinationSavedMsg{Operation: "update", Before: &before, After: after, Index: svc.IndexOf(after.ID)}
	}
}

// View renders the form.
func (m *DestinationFormModel) View(width, height int) string {
	var fields []string

	fields = append(fields, renderFormField("Name *", *m.inputs[fieldName], m.focused == fieldName))
	fields = append(fields, m.renderCategory())
	fields = append(fields, renderFormField("Rating (1-5)", *m.inputs[fieldRating], m.focused == fieldRating))
	fields = append(fields, renderFormField("Notes", *m.inputs[fieldNotes], m.focused == fieldNotes))
	fields = append(fields, renderFormField("Image URL", *m.inputs[fieldImageURL], m.focused == fieldImageURL))
	fields = append(fields, renderFormField("Upload image", *m.inputs[fieldImageFile], m.focused == fieldImageFile))

	tipsLabel := "Travel Tips"
	if m.generating {
		tipsLabel += "  " + HelpDescStyle.Render(m.spinner.View()+" Generating...")
	}
	tipsStyle := BorderStyle
	if m.focused == fieldTips {
		tipsStyle = ActiveBorderStyle
	}
	m.aiTips.SetWidth(max(20, width-14))
	fields = append(fields, tipsStyle.Render(lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render(tipsLabel), m.aiTips.View())))

	if m.error != "" {
		fields = append(fields, ErrorStyle.Render(m.error))
	}

	title := "New Destination"
	if m.editing != nil {
		title = "Edit " + m.editing.Name
	}

	return PanelStyle.
		Width(width - 4).
		Height(max(1, height-4)).
		Render(LabelStyle.Render(title) + "\n\n" + strings.Join(fields, "\n"))
}

func (m *DestinationFormModel) renderCategory() string {
	style := BorderStyle
	value := NormalRowStyle.Render(m.category)
	if m.focused == fieldCategory {
		style = ActiveBorderStyle
		value = HelpKeyStyle.Render("‹ ") + value + HelpKeyStyle.Render(" ›")
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render("Category"), value))
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}
