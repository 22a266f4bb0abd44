package editor

import (
	"github.com/inamate/vecedit/internal/figure"
)

// --- Model operations on the selection ---

// AddFigure inserts f on top and selects it.
func (e *Editor) AddFigure(f figure.Figure) {
	e.Begin()
	e.model.Add(f)
	e.Commit()
	e.setSelection([]string{f.ID()})
}

// DeleteSelection removes the selected figures.
func (e *Editor) DeleteSelection() {
	if len(e.selection) == 0 {
		return
	}
	e.Begin()
	e.model.Remove(e.selection...)
	e.Commit()
}

// SelectAll selects every figure of the model.
func (e *Editor) SelectAll() { e.setSelection(e.model.IDs()) }

// GroupSelection replaces two or more selected figures by a group and
// selects it.
func (e *Editor) GroupSelection() (*figure.Group, bool) {
	if len(e.selection) < 2 {
		return nil, false
	}
	e.Begin()
	g := e.model.Group(e.selection...)
	e.Commit()
	e.setSelection([]string{g.ID()})
	return g, true
}

// UngroupSelection dissolves the selected groups and selects their members.
func (e *Editor) UngroupSelection() {
	var sel []string
	e.Begin()
	for _, f := range e.selectedFigures() {
		if f.Kind() != figure.KindGroup {
			sel = append(sel, f.ID())
			continue
		}
		for _, c := range e.model.Ungroup(f.ID()) {
			sel = append(sel, c.ID())
		}
	}
	e.Commit()
	e.setSelection(sel)
}

// SelectionToTop moves the selection above all other figures.
func (e *Editor) SelectionToTop() { e.reorder(e.model.ToTop) }

// SelectionToBottom moves the selection below all other figures.
func (e *Editor) SelectionToBottom() { e.reorder(e.model.ToBottom) }

// SelectionUp moves each selected figure one step up.
func (e *Editor) SelectionUp() { e.reorder(e.model.Up) }

// SelectionDown moves each selected figure one step down.
func (e *Editor) SelectionDown() { e.reorder(e.model.Down) }

func (e *Editor) reorder(fn func(ids ...string)) {
	if len(e.selection) == 0 {
		return
	}
	e.Begin()
	fn(e.selection...)
	e.Commit()
}
