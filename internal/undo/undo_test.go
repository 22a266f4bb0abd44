package undo

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/model"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func line(id string) figure.Figure {
	l := figure.Line(geom.Pt(0, 0), geom.Pt(10, 0))
	l.SetID(id)
	return l
}

func TestUndoRedo(t *testing.T) {
	m := model.New()
	u := New(0)

	u.BeginGrouping(m)
	m.Add(line("A"))
	if err := u.EndGrouping(m); err != nil {
		t.Fatal(err)
	}
	u.BeginGrouping(m)
	m.Add(line("B"))
	u.EndGrouping(m)

	if !u.Undo() {
		t.Fatal("undo failed")
	}
	diff(t, []string{"A"}, m.IDs())
	if !u.Undo() {
		t.Fatal("second undo failed")
	}
	diff(t, []string{}, m.IDs())
	if u.Undo() {
		t.Error("undo past history succeeded")
	}
	u.Redo()
	u.Redo()
	diff(t, []string{"A", "B"}, m.IDs())
	if u.CanRedo() {
		t.Error("redo left after replaying everything")
	}
}

func TestEmptyGroupingRecordsNothing(t *testing.T) {
	m := model.New()
	u := New(0)

	u.BeginGrouping(m)
	u.BeginGrouping(m)
	u.EndGrouping(m)
	if !u.Grouping() {
		t.Fatal("inner EndGrouping closed the outer grouping")
	}
	u.EndGrouping(m)

	if u.CanUndo() {
		t.Error("unchanged model produced an undo entry")
	}
	if err := u.EndGrouping(m); !errors.Is(err, ErrNotGrouping) {
		t.Errorf("EndGrouping without Begin = %v", err)
	}
}

func TestAbortRestores(t *testing.T) {
	m := model.New()
	m.Add(line("A"))
	u := New(0)

	u.BeginGrouping(m)
	a, _ := m.Get("A")
	a.TranslateHandle(0, geom.Pt(5, 5))
	m.Modified("A")
	m.Add(line("B"))
	u.Abort()

	diff(t, []string{"A"}, m.IDs())
	a, _ = m.Get("A")
	if p, _ := a.Handle(0); p != geom.Pt(0, 0) {
		t.Errorf("handle after abort = %v", p)
	}
	if u.Grouping() || u.CanUndo() {
		t.Error("abort left state behind")
	}
}

func TestNewEntryClearsRedoAndLimit(t *testing.T) {
	m := model.New()
	u := New(2)
	for _, id := range []string{"A", "B", "C"} {
		u.BeginGrouping(m)
		m.Add(line(id))
		u.EndGrouping(m)
	}
	u.Undo()
	u.Undo()
	if u.Undo() {
		t.Error("limit not enforced")
	}
	diff(t, []string{"A"}, m.IDs())

	u.BeginGrouping(m)
	m.Add(line("D"))
	u.EndGrouping(m)
	if u.CanRedo() {
		t.Error("redo survived a new entry")
	}
}

func TestManagersShareModel(t *testing.T) {
	m := model.New()
	a, b := New(0), New(0)

	a.BeginGrouping(m)
	m.Add(line("X"))
	a.EndGrouping(m)
	b.BeginGrouping(m)
	m.Add(line("Y"))
	b.EndGrouping(m)

	a.Undo()
	diff(t, []string{"Y"}, m.IDs())
	a.Redo()
	diff(t, []string{"X", "Y"}, m.IDs())
	b.Undo()
	diff(t, []string{"X"}, m.IDs())
}

func TestAbortKeepsInterleavedGrouping(t *testing.T) {
	m := model.New()
	m.Add(line("A"))
	a, b := New(0), New(0)

	// a keeps a gesture open while b completes an action.
	a.BeginGrouping(m)
	fa, _ := m.Get("A")
	fa.TranslateHandle(0, geom.Pt(5, 5))
	m.Modified("A")
	b.BeginGrouping(m)
	m.Add(line("B"))
	b.EndGrouping(m)
	fa.TranslateHandle(0, geom.Pt(5, 5))
	m.Modified("A")
	a.Abort()

	diff(t, []string{"A", "B"}, m.IDs())
	fa, _ = m.Get("A")
	if p, _ := fa.Handle(0); p != geom.Pt(0, 0) {
		t.Errorf("handle after abort = %v", p)
	}
	if !b.CanUndo() {
		t.Fatal("b lost its entry")
	}
	b.Undo()
	diff(t, []string{"A"}, m.IDs())
}
