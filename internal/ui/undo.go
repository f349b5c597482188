package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"wanderlist/internal/destinations"
	"wanderlist/internal/model"
)

type undoAction struct {
	label string
	undo  func(ctx context.Context) error
	redo  func(ctx context.Context) error
}

type undoAppliedMsg struct {
	err       error
	action    undoAction
	direction string // undo, redo
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
}

func (m *Model) undoCmd() tea.Cmd {
	if len(m.undoStack) == 0 {
		return nil
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return func() tea.Msg {
		err := action.undo(context.Background())
		return undoAppliedMsg{err: err, action: action, direction: "undo"}
	}
}

func (m *Model) redoCmd() tea.Cmd {
	if len(m.redoStack) == 0 {
		return nil
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return func() tea.Msg {
		err := action.redo(context.Background())
		return undoAppliedMsg{err: err, action: action, direction: "redo"}
	}
}

func removeOrFail(ctx context.Context, svc *destinations.Service, d model.Destination) error {
	if !svc.Remove(ctx, d.ID, destinations.Confirmed) {
		return fmt.Errorf("destination %q no longer exists", d.Name)
	}
	return nil
}

func buildSaveAction(svc *destinations.Service, msg model.DestinationSavedMsg) *undoAction {
	switch msg.Operation {
	case "insert":
		after := msg.After.Clone()
		index := msg.Index
		return &undoAction{
			label: after.Name + " added",
			undo: func(ctx context.Context) error {
				return removeOrFail(ctx, svc, after)
			},
			redo: func(ctx context.Context) error {
				return svc.Restore(ctx, after, index)
			},
		}
	case "update":
		if msg.Before == nil {
			return nil
		}
		before := msg.Before.Clone()
		after := msg.After.Clone()
		return &undoAction{
			label: after.Name + " updated",
			undo: func(ctx context.Context) error {
				return replaceWith(ctx, svc, before)
			},
			redo: func(ctx context.Context) error {
				return replaceWith(ctx, svc, after)
			},
		}
	default:
		return nil
	}
}

func buildDeleteAction(svc *destinations.Service, msg model.DestinationDeletedMsg) undoAction {
	deleted := msg.Deleted.Clone()
	index := msg.Index
	return undoAction{
		label: deleted.Name + " deleted",
		undo: func(ctx context.Context) error {
			return svc.Restore(ctx, deleted, index)
		},
		redo: func(ctx context.Context) error {
			return removeOrFail(ctx, svc, deleted)
		},
	}
}

// replaceWith writes every editable field of d back over the stored record.
func replaceWith(ctx context.Context, svc *destinations.Service, d model.Destination) error {
	_, found, err := svc.Update(ctx, d.ID, destinationToPatch(d))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("destination %q no longer exists", d.Name)
	}
	return nil
}

func destinationToPatch(d model.Destination) model.DestinationPatch {
	p := model.DestinationPatch{
		Name:        model.StringPtr(d.Name),
		Category:    model.StringPtr(d.Category),
		Notes:       model.StringPtr(d.Notes),
		ImageBase64: model.StringPtr(d.ImageBase64),
		ImageURL:    model.StringPtr(d.ImageURL),
		AITips:      model.StringPtr(d.AITips),
	}
	// Imported records can carry ratings the patch would reject.
	if d.Rating >= model.MinRating && d.Rating <= model.MaxRating {
		p.Rating = model.IntPtr(d.Rating)
	}
	return p
}

func (m *Model) applyUndoResult(msg undoAppliedMsg) tea.Cmd {
	if msg.err != nil {
		m.error = fmt.Sprintf("%s failed: %v", msg.direction, msg.err)
		return loadDestinationsCmd(m.service)
	}

	if msg.direction == "undo" {
		m.redoStack = append(m.redoStack, msg.action)
		m.info = "Undid: " + msg.action.label
	} else {
		m.undoStack = append(m.undoStack, msg.action)
		m.info = "Redid: " + msg.action.label
	}
	m.error = ""
	return loadDestinationsCmd(m.service)
}
