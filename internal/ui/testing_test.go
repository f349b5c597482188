package ui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"wanderlist/internal/destinations"
	"wanderlist/internal/model"
	"wanderlist/internal/tips"
)

// memStore is an in-memory destinations.Store.
type memStore struct {
	items  []model.Destination
	saves  int
	nextID int
}

func (s *memStore) Load(context.Context) []model.Destination {
	return s.items
}

func (s *memStore) Save(_ context.Context, list []model.Destination) error {
	s.items = list
	s.saves++
	return nil
}

func (s *memStore) NewID() string {
	s.nextID++
	return fmt.Sprintf("new-%d", s.nextID)
}

func sampleDestinations() []model.Destination {
	return []model.Destination{
		{ID: "paris", Name: "Paris", Category: model.CategoryEurope, Rating: 5, Notes: "Eiffel tower", CreatedAt: 100},
		{ID: "tokyo", Name: "Tokyo", Category: model.CategoryAsia, Rating: 4, CreatedAt: 300},
		{ID: "cairo", Name: "Cairo", Category: model.CategoryAfrica, Rating: 2, CreatedAt: 200},
	}
}

func names(list []model.Destination) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.Name
	}
	return out
}

// keyPress builds the tea.KeyMsg a terminal would send for s.
func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

type testApp struct {
	t       *testing.T
	model   Model
	service *destinations.Service
	store   *memStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	st := &memStore{items: sampleDestinations()}
	svc := destinations.NewService(context.Background(), st, nil)
	m := New(svc, tips.NewProvider(nil, nil), TerminalCapabilities{NoColor: true}, PrefsPath(t.TempDir()), nil)

	app := &testApp{t: t, model: m, service: svc, store: st}
	app.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	app.run(m.Init())
	require.NotNil(t, app.model.list)
	return app
}

// send feeds msg to the model and returns the resulting command.
func (a *testApp) send(msg tea.Msg) tea.Cmd {
	a.t.Helper()
	next, cmd := a.model.Update(msg)
	m, ok := next.(Model)
	require.True(a.t, ok)
	a.model = m
	return cmd
}

func (a *testApp) press(keys ...string) tea.Cmd {
	a.t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = a.send(keyPress(k))
	}
	return cmd
}

// run executes cmd and feeds its message back, following up to a few
// chained commands. Batches and ticks are not followed.
func (a *testApp) run(cmd tea.Cmd) {
	a.t.Helper()
	for i := 0; cmd != nil && i < 5; i++ {
		msg := cmd()
		if _, isBatch := msg.(tea.BatchMsg); isBatch {
			return
		}
		cmd = a.send(msg)
	}
}
