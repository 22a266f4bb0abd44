// Package undo records the figures changed by user actions so they can be
// reverted and replayed.
package undo

import (
	"errors"

	"github.com/inamate/vecedit/internal/model"
)

var ErrNotGrouping = errors.New("no undo grouping is open")

type entry struct {
	model         *model.Model
	before, after model.State
}

// Manager brackets user actions with BeginGrouping/EndGrouping. Groupings
// nest; only the outermost one records an entry, and only if the model
// actually changed. Entries cover just the figures changed inside the
// grouping, so several managers can share one model.
type Manager struct {
	limit int
	undo  []entry
	redo  []entry

	depth  int
	open   *model.Model
	before model.Snapshot
	rec    *model.Recording
}

// New returns a manager keeping at most limit entries (0 = unlimited).
func New(limit int) *Manager {
	return &Manager{limit: limit}
}

// BeginGrouping opens (or nests into) a grouping on m.
func (u *Manager) BeginGrouping(m *model.Model) {
	if u.depth == 0 {
		u.open = m
		u.before = m.Snapshot()
		u.rec = m.Record()
	}
	u.depth++
}

// EndGrouping closes the innermost grouping. Closing the outermost records
// an entry unless the touched figures are unchanged.
func (u *Manager) EndGrouping(m *model.Model) error {
	if u.depth == 0 {
		return ErrNotGrouping
	}
	u.depth--
	if u.depth > 0 {
		return nil
	}
	before, after := u.close()
	if !after.Equal(before) {
		u.undo = append(u.undo, entry{model: m, before: before, after: after})
		if u.limit > 0 && len(u.undo) > u.limit {
			u.undo = u.undo[len(u.undo)-u.limit:]
		}
		u.redo = nil
	}
	return nil
}

// Abort closes every open grouping and puts the figures it touched back
// the way they were when the outermost one began.
func (u *Manager) Abort() {
	if u.depth == 0 {
		return
	}
	m := u.open
	u.depth = 0
	before, after := u.close()
	if !after.Equal(before) {
		apply(m, before)
	}
}

// close ends the recording and returns the touched figures' states at
// the start of the grouping and now.
func (u *Manager) close() (before, after model.State) {
	ids := u.rec.IDs()
	u.rec.Close()
	before = u.before.Capture(ids)
	after = u.open.Capture(ids)
	u.open = nil
	u.rec = nil
	u.before = model.Snapshot{}
	return before, after
}

// apply restores s inside a throwaway recording so the change is not
// credited to a grouping another manager has open.
func apply(m *model.Model, s model.State) {
	rec := m.Record()
	defer rec.Close()
	m.Apply(s)
}

// Grouping reports whether a grouping is open.
func (u *Manager) Grouping() bool { return u.depth > 0 }

func (u *Manager) CanUndo() bool { return len(u.undo) > 0 && u.depth == 0 }
func (u *Manager) CanRedo() bool { return len(u.redo) > 0 && u.depth == 0 }

// Undo reverts the latest entry.
func (u *Manager) Undo() bool {
	if !u.CanUndo() {
		return false
	}
	e := u.undo[len(u.undo)-1]
	u.undo = u.undo[:len(u.undo)-1]
	apply(e.model, e.before)
	u.redo = append(u.redo, e)
	return true
}

// Redo reapplies the latest undone entry.
func (u *Manager) Redo() bool {
	if !u.CanRedo() {
		return false
	}
	e := u.redo[len(u.redo)-1]
	u.redo = u.redo[:len(u.redo)-1]
	apply(e.model, e.after)
	u.undo = append(u.undo, e)
	return true
}

// Clear drops all history. Open groupings are left alone.
func (u *Manager) Clear() {
	u.undo = nil
	u.redo = nil
}
