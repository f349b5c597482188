package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// DestinationsLoadedMsg is sent when the collection is (re)read from the service.
type DestinationsLoadedMsg struct {
	Destinations []Destination
	Warning      error
}

// DestinationSavedMsg is sent when a destination is successfully saved.
type DestinationSavedMsg struct {
	Operation string // insert, update
	Before    *Destination
	After     Destination
	Index     int
}

// DestinationDeletedMsg is sent after a confirmed removal.
type DestinationDeletedMsg struct {
	Deleted Destination
	Index   int
}

// TipsLoadedMsg carries the result of a tip request. Seq identifies the
// request so stale results can be dropped.
type TipsLoadedMsg struct {
	Seq   int
	Place string
	Type  string
	Text  string
	Err   error
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenDestinations Screen = iota
	ScreenDestinationDetail
	ScreenDestinationForm
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
	ModeSearch
	ModeConfirm
)
