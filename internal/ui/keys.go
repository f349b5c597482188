package ui

import "github.com/charmbracelet/bubbles/key"

// GState represents the state for "gg" navigation.
type GState int

const (
	GStateIdle GState = iota
	GStateFirstG
)

// KeyMap defines all keybindings for nav mode.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Select       key.Binding
	Back         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	Search       key.Binding
	Quit         key.Binding
	Help         key.Binding
	Add          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	CategoryNext key.Binding
	CategoryPrev key.Binding
	SortNext     key.Binding
	SortPrev     key.Binding
	FetchTips    key.Binding
	CycleTipType key.Binding
	SaveTips     key.Binding
	Undo         key.Binding
	Redo         key.Binding
	Confirm      key.Binding
	Decline      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter/l", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("h", "left", "b", "esc"),
			key.WithHelp("h/esc", "back"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "½ page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "½ page up"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		CategoryNext: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "next category"),
		),
		CategoryPrev: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "prev category"),
		),
		SortNext: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next sort"),
		),
		SortPrev: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "prev sort"),
		),
		FetchTips: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "get tips"),
		),
		CycleTipType: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "tip type"),
		),
		SaveTips: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "save tips"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "redo"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// FormKeyMap defines keybindings for insert/edit mode.
type FormKeyMap struct {
	NextField    key.Binding
	PrevField    key.Binding
	Save         key.Binding
	Cancel       key.Binding
	GenerateTips key.Binding
}

// DefaultFormKeyMap returns the default form keybindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		GenerateTips: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "generate tips"),
		),
	}
}
