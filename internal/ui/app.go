package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlist/internal/destinations"
	"wanderlist/internal/model"
	"wanderlist/internal/store"
	"wanderlist/internal/tips"
)

const quotaMessage = "Storage quota exceeded. Please remove some images or destinations."

// Model is the root Bubble Tea model.
type Model struct {
	service          *destinations.Service
	tips             *tips.Provider
	termCapabilities TerminalCapabilities
	log              *slog.Logger
	screen           model.Screen
	mode             model.Mode
	gState           GState

	width  int
	height int

	error       string
	info        string
	warning     string
	showingHelp bool

	// Screen models
	list          *DestinationsModel
	detail        *DestinationDetailModel
	form          *DestinationFormModel
	pendingDelete *model.Destination

	keys      KeyMap
	formKeys  FormKeyMap
	prefs     UIPreferences
	prefsPath string
	undoStack []undoAction
	redoStack []undoAction
}

// New creates a new root model. prefsPath may be empty to skip persisting
// list preferences.
func New(svc *destinations.Service, provider *tips.Provider, termCaps TerminalCapabilities, prefsPath string, log *slog.Logger) Model {
	if log == nil {
		log = slog.Default()
	}
	if provider == nil {
		provider = tips.NewProvider(nil, log)
	}
	return Model{
		service:          svc,
		tips:             provider,
		termCapabilities: termCaps,
		log:              log,
		screen:           model.ScreenDestinations,
		mode:             model.ModeNav,
		gState:           GStateIdle,
		keys:             DefaultKeyMap(),
		formKeys:         DefaultFormKeyMap(),
		prefs:            loadUIPreferences(prefsPath),
		prefsPath:        prefsPath,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return loadDestinationsCmd(m.service)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Handle help toggle
		if key.Matches(msg, m.keys.Help) && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		// Route to mode-specific handlers
		switch m.mode {
		case model.ModeSearch:
			return m.handleSearchMode(msg)
		case model.ModeConfirm:
			return m.handleConfirmMode(msg)
		case model.ModeInsert:
			return m.handleInsertMode(msg)
		default:
			return m.handleNavMode(msg)
		}

	case model.ErrorMsg:
		m.error = describeError(msg.Err)
		return m, nil

	case model.DestinationsLoadedMsg:
		m.applyLoaded(msg)
		return m, nil

	case model.DestinationSavedMsg:
		if action := buildSaveAction(m.service, msg); action != nil {
			m.pushUndoAction(*action)
		}
		m.mode = model.ModeNav
		m.form = nil
		m.error = ""
		m.info = "Saved " + msg.After.Name
		if m.detail != nil && msg.Operation == "update" {
			m.screen = model.ScreenDestinationDetail
		} else {
			m.screen = model.ScreenDestinations
			m.detail = nil
		}
		if m.list != nil {
			m.list.SetItems(m.service.List())
			m.list.SelectID(msg.After.ID)
		}
		return m, loadDestinationsCmd(m.service)

	case model.FormCancelledMsg:
		m.mode = model.ModeNav
		m.form = nil
		if m.detail != nil {
			m.screen = model.ScreenDestinationDetail
		} else {
			m.screen = model.ScreenDestinations
		}
		return m, nil

	case model.DestinationDeletedMsg:
		m.pushUndoAction(buildDeleteAction(m.service, msg))
		m.screen = model.ScreenDestinations
		m.detail = nil
		m.error = ""
		m.info = fmt.Sprintf("Deleted %s (u to undo)", msg.Deleted.Name)
		return m, loadDestinationsCmd(m.service)

	case model.TipsLoadedMsg:
		if m.mode == model.ModeInsert && m.form != nil {
			return m.handleInsertMode(msg)
		}
		if m.detail != nil && m.detail.ApplyTips(msg) && msg.Err != nil {
			m.error = describeError(msg.Err)
		}
		return m, nil

	case spinner.TickMsg:
		if m.mode == model.ModeInsert && m.form != nil {
			return m.handleInsertMode(msg)
		}
		if m.detail != nil {
			return m, m.detail.Update(msg)
		}
		return m, nil

	case undoAppliedMsg:
		return m, m.applyUndoResult(msg)

	default:
		// Pass all other messages to forms
		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}
	}

	return m, nil
}

func (m *Model) applyLoaded(msg model.DestinationsLoadedMsg) {
	if m.list == nil {
		m.list = NewDestinationsModel(msg.Destinations, m.prefs)
	} else {
		m.list.SetItems(msg.Destinations)
	}

	m.warning = ""
	if msg.Warning != nil {
		m.warning = describeError(msg.Warning)
	}

	if m.detail == nil {
		return
	}
	for _, d := range msg.Destinations {
		if d.ID == m.detail.dest.ID {
			m.detail.SetDestination(d)
			return
		}
	}
	// The open destination was removed, for example by an undo.
	m.detail = nil
	if m.screen == model.ScreenDestinationDetail {
		m.screen = model.ScreenDestinations
	}
}

func describeError(err error) string {
	if errors.Is(err, store.ErrQuotaExceeded) {
		return quotaMessage
	}
	return err.Error()
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var banners []string
	if m.error != "" {
		banners = append(banners, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.warning != "" && m.warning != m.error {
		banners = append(banners, WarningStyle.Width(m.width).Render("Warning: "+m.warning))
	}
	if m.mode == model.ModeConfirm && m.pendingDelete != nil {
		banners = append(banners, WarningStyle.Width(m.width).Render(
			fmt.Sprintf("Delete %q? (y/n)", m.pendingDelete.Name)))
	} else if m.info != "" {
		banners = append(banners, SuccessStyle.Width(m.width).Render(m.info))
	}

	showTabs := m.screen == model.ScreenDestinations

	// Header: 2 lines, Footer: 2 lines, Tabs: 2 lines (if shown)
	contentHeight := m.contentHeight() - len(banners)
	if showTabs {
		contentHeight -= 2
	}
	contentHeight = max(1, contentHeight)

	var content string
	var breadcrumbParts []string

	switch m.screen {
	case model.ScreenDestinations:
		breadcrumbParts = []string{"Destinations"}
		if m.list != nil {
			content = m.list.View(m.width, contentHeight)
		}
	case model.ScreenDestinationDetail:
		breadcrumbParts = []string{"Destinations", "Detail"}
		if m.detail != nil {
			breadcrumbParts = []string{"Destinations", m.detail.dest.Name}
			content = m.detail.View(m.width, contentHeight)
		}
	case model.ScreenDestinationForm:
		breadcrumbParts = []string{"Destinations", "New"}
		if m.form != nil {
			if m.form.Editing() {
				breadcrumbParts = []string{"Destinations", "Edit"}
			}
			content = m.form.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.screen, m.mode, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := []string{header}
	if showTabs {
		category := model.CategoryAll
		if m.list != nil {
			category = m.list.category
		}
		parts = append(parts, renderTabs(category, m.width))
	}
	parts = append(parts, banners...)
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) contentHeight() int {
	return m.height - 4
}

// renderTabs shows the category filter as a tab bar.
func renderTabs(active string, width int) string {
	names := append([]string{model.CategoryAll}, model.Categories()...)

	var tabStrings []string
	for _, name := range names {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(ColorMuted)

		if name == active {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(name))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		MaxHeight(2).
		Padding(0, 1).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func renderHeader(breadcrumbParts []string, width int) string {
	title := HeaderStyle.Render("wanderlist")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Undo):
		if len(m.undoStack) == 0 {
			m.info = "Nothing to undo"
			return m, nil
		}
		return m, m.undoCmd()
	case key.Matches(msg, m.keys.Redo):
		if len(m.redoStack) == 0 {
			m.info = "Nothing to redo"
			return m, nil
		}
		return m, m.redoCmd()
	}

	// Handle "gg" state machine
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateFirstG {
			m.gState = GStateIdle
			if m.list != nil && m.screen == model.ScreenDestinations {
				m.list.JumpToTop()
			}
			return m, nil
		}
		m.gState = GStateFirstG
		return m, nil
	}
	m.gState = GStateIdle

	switch m.screen {
	case model.ScreenDestinations:
		return m.handleDestinationsNav(msg)
	case model.ScreenDestinationDetail:
		return m.handleDestinationDetailNav(msg)
	}
	return m, nil
}

func (m Model) handleDestinationsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list == nil {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.mode = model.ModeSearch
		m.info = ""
		return m, m.list.StartSearch()
	case key.Matches(msg, m.keys.CategoryNext):
		m.info = m.list.CycleCategory(1)
		m.persistPrefs()
		return m, nil
	case key.Matches(msg, m.keys.CategoryPrev):
		m.info = m.list.CycleCategory(-1)
		m.persistPrefs()
		return m, nil
	case key.Matches(msg, m.keys.SortNext):
		m.info = m.list.CycleSort(1)
		m.persistPrefs()
		return m, nil
	case key.Matches(msg, m.keys.SortPrev):
		m.info = m.list.CycleSort(-1)
		m.persistPrefs()
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if d := m.list.Selected(); d != nil {
			m.openDetail(*d)
		}
		return m, nil
	case key.Matches(msg, m.keys.Add):
		return m.openForm(nil)
	case key.Matches(msg, m.keys.Edit):
		if d := m.list.Selected(); d != nil {
			return m.openForm(d)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if d := m.list.Selected(); d != nil {
			m.askDelete(*d)
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.list.MoveDown()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.list.MoveUp()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.list.JumpToBottom()
		return m, nil
	case key.Matches(msg, m.keys.HalfPageDown):
		m.list.HalfPageDown(m.contentHeight())
		return m, nil
	case key.Matches(msg, m.keys.HalfPageUp):
		m.list.HalfPageUp(m.contentHeight())
		return m, nil
	}
	return m, nil
}

func (m Model) handleDestinationDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.screen = model.ScreenDestinations
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenDestinations
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keys.FetchTips):
		seq, tick := m.detail.StartTips()
		m.error = ""
		return m, tea.Batch(tick, fetchTipsCmd(m.tips, seq, m.detail.dest.Name, m.detail.tipType))
	case key.Matches(msg, m.keys.CycleTipType):
		t := m.detail.CycleTipType()
		m.prefs.TipType = string(t)
		m.persistPrefs()
		m.info = "Tips: " + t.Label()
		return m, nil
	case key.Matches(msg, m.keys.SaveTips):
		text, ok := m.detail.FetchedTips()
		if !ok {
			m.info = "Fetch tips first (t)"
			return m, nil
		}
		return m, saveTipsCmd(m.service, m.detail.dest, text)
	case key.Matches(msg, m.keys.Edit):
		d := m.detail.dest
		return m.openForm(&d)
	case key.Matches(msg, m.keys.Delete):
		m.askDelete(m.detail.dest)
		return m, nil
	}
	return m, nil
}

func (m *Model) openDetail(d model.Destination) {
	m.detail = NewDestinationDetailModel(d, m.termCapabilities, tips.ParseType(m.prefs.TipType), m.tips.Live())
	m.screen = model.ScreenDestinationDetail
	m.error = ""
	m.info = ""
}

func (m Model) openForm(d *model.Destination) (tea.Model, tea.Cmd) {
	m.form = NewDestinationFormModel(m.service, m.tips, m.formKeys)
	if d != nil {
		m.form.LoadDestination(*d)
	}
	m.mode = model.ModeInsert
	m.screen = model.ScreenDestinationForm
	m.error = ""
	m.info = ""
	return m, nil
}

func (m *Model) askDelete(d model.Destination) {
	pending := d.Clone()
	m.pendingDelete = &pending
	m.mode = model.ModeConfirm
	m.info = ""
}

func (m Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		d := m.pendingDelete
		m.pendingDelete = nil
		m.mode = model.ModeNav
		if d == nil {
			return m, nil
		}
		return m, deleteDestinationCmd(m.service, d.ID)
	case key.Matches(msg, m.keys.Decline):
		m.pendingDelete = nil
		m.mode = model.ModeNav
		m.info = "Delete cancelled"
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	switch msg.String() {
	case "enter":
		m.list.StopSearch(false)
		m.mode = model.ModeNav
		return m, nil
	case "esc":
		m.list.StopSearch(true)
		m.mode = model.ModeNav
		return m, nil
	}
	return m, m.list.UpdateSearch(msg)
}

// handleInsertMode handles insert/edit mode input.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	newForm, cmd := m.form.Update(msg)
	m.form = &newForm
	return m, cmd
}

func (m *Model) persistPrefs() {
	if m.list != nil {
		m.prefs = m.list.Prefs(m.prefs)
	}
	if err := saveUIPreferences(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("failed to save preferences", "error", err)
	}
}

// Commands

func loadDestinationsCmd(svc *destinations.Service) tea.Cmd {
	return func() tea.Msg {
		return model.DestinationsLoadedMsg{
			Destinations: svc.List(),
			Warning:      svc.Warning(),
		}
	}
}

func deleteDestinationCmd(svc *destinations.Service, id string) tea.Cmd {
	return func() tea.Msg {
		d, ok := svc.GetByID(id)
		if !ok {
			return model.ErrorMsg{Err: fmt.Errorf("destination %s no longer exists", id)}
		}
		index := svc.IndexOf(id)
		if !svc.Remove(context.Background(), id, destinations.Confirmed) {
			return model.ErrorMsg{Err: fmt.Errorf("failed to delete %s", d.Name)}
		}
		return model.DestinationDeletedMsg{Deleted: d, Index: index}
	}
}

func saveTipsCmd(svc *destinations.Service, d model.Destination, text string) tea.Cmd {
	before := d.Clone()
	return func() tea.Msg {
		after, found, err := svc.Update(context.Background(), before.ID, model.DestinationPatch{AITips: &text})
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to save tips: %w", err)}
		}
		if !found {
			return model.ErrorMsg{Err: fmt.Errorf("destination %q no longer exists", before.Name)}
		}
		return model.DestinationSavedMsg{Operation: "update", Before: &before, After: after, Index: svc.IndexOf(after.ID)}
	}
}

func fetchTipsCmd(provider *tips.Provider, seq int, place string, t tips.Type) tea.Cmd {
	return func() tea.Msg {
		text, err := provider.GetTips(context.Background(), place, t)
		return model.TipsLoadedMsg{Seq: seq, Place: place, Type: string(t), Text: text, Err: err}
	}
}
