package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlist/internal/ui"
)

const (
	setupFileName  = "setup.json"
	apiKeyFileName = "openai_api_key"
)

// TipsSetup is the first-run answer about AI travel tips.
type TipsSetup struct {
	Answered bool `json:"answered"`
	AITips   bool `json:"ai_tips"`
}

func readTipsSetup(configDir string) (TipsSetup, error) {
	var setup TipsSetup
	data, err := os.ReadFile(filepath.Join(configDir, setupFileName))
	if errors.Is(err, os.ErrNotExist) {
		return setup, nil
	}
	if err != nil {
		return setup, err
	}
	if err := json.Unmarshal(data, &setup); err != nil {
		return TipsSetup{}, fmt.Errorf("failed to parse %s: %w", setupFileName, err)
	}
	return setup, nil
}

func writeTipsSetup(configDir string, setup TipsSetup) error {
	data, err := json.MarshalIndent(setup, "", "  ")
	if err != nil {
		return err
	}
	return writePrivate(configDir, setupFileName, data)
}

// storeAPIKey keeps the key readable by the owner only.
func storeAPIKey(configDir, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return writePrivate(configDir, apiKeyFileName, []byte(key+"\n"))
}

func readAPIKey(configDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(configDir, apiKeyFileName))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writePrivate(configDir, name string, data []byte) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, name), data, 0600)
}

// needsSetup reports whether the first-run prompt should be shown on in.
func needsSetup(setup TipsSetup, in *os.File) bool {
	if setup.Answered {
		return false
	}
	fi, err := in.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// setupModel asks a single question. When a key is already configured it is
// a yes/no confirmation; otherwise the key is pasted into the input and an
// empty answer keeps the offline tips.
type setupModel struct {
	input      textinput.Model
	presetKey  string
	result     TipsSetup
	key        string
	finished   bool
	panelWidth int
}

func newSetupModel(presetKey string) setupModel {
	in := textinput.New()
	in.Prompt = "key> "
	in.Placeholder = "sk-..."
	in.CharLimit = 300
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Focus()
	return setupModel{input: in, presetKey: strings.TrimSpace(presetKey), panelWidth: 72}
}

func (m setupModel) Init() tea.Cmd { return textinput.Blink }

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.panelWidth = max(24, min(72, msg.Width-2))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m.finish("")
		}
		if m.presetKey != "" {
			switch msg.String() {
			case "y", "Y", "enter":
				return m.finish(m.presetKey)
			case "n", "N":
				return m.finish("")
			}
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			return m.finish(strings.TrimSpace(m.input.Value()))
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// finish records the answer. An empty key means offline tips.
func (m setupModel) finish(key string) (tea.Model, tea.Cmd) {
	m.key = key
	m.result = TipsSetup{Answered: true, AITips: key != ""}
	m.finished = true
	return m, tea.Quit
}

func (m setupModel) View() string {
	if m.finished {
		if m.result.AITips {
			return ui.SuccessStyle.Render("AI travel tips enabled.") + "\n"
		}
		return ui.WarningStyle.Render("Using offline travel tips. Set OPENAI_API_KEY to enable AI tips later.") + "\n"
	}

	header := ui.TitleStyle.Render("wanderlist") + ui.BreadcrumbStyle.Render(" › first run")
	var body []string
	if m.presetKey != "" {
		body = []string{
			ui.LabelStyle.Render("An OpenAI API key is already configured."),
			"Use it for AI travel tips? (Y/n)",
		}
	} else {
		body = []string{
			ui.LabelStyle.Render("AI travel tips are optional."),
			ui.HelpDescStyle.Render("Paste a key from https://platform.openai.com/api-keys,"),
			ui.HelpDescStyle.Render("or press enter to use the built-in offline tips."),
			"",
			ui.InputStyle.Render(m.input.View()),
			"",
			ui.HelpKeyStyle.Render("enter") + ui.HelpDescStyle.Render(" confirm  ") +
				ui.HelpKeyStyle.Render("esc") + ui.HelpDescStyle.Render(" skip"),
		}
	}
	panel := ui.PanelStyle.Width(m.panelWidth).Render(lipgloss.JoinVertical(lipgloss.Left, body...))
	return lipgloss.JoinVertical(lipgloss.Left, header, panel) + "\n"
}

// runSetup shows the first-run prompt inline and saves the answer.
func runSetup(configDir, presetKey string) (TipsSetup, error) {
	final, err := tea.NewProgram(newSetupModel(presetKey)).Run()
	if err != nil {
		return TipsSetup{}, fmt.Errorf("setup prompt failed: %w", err)
	}
	m, ok := final.(setupModel)
	if !ok {
		return TipsSetup{}, fmt.Errorf("unexpected setup model %T", final)
	}
	if err := storeAPIKey(configDir, m.key); err != nil {
		return TipsSetup{}, fmt.Errorf("failed to store API key: %w", err)
	}
	if err := writeTipsSetup(configDir, m.result); err != nil {
		return TipsSetup{}, fmt.Errorf("failed to save setup: %w", err)
	}
	return m.result, nil
}
