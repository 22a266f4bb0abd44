package tool

import (
	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/render"
)

// target locates a path that may sit inside groups: top is the model
// member that owns it and toSheet maps the path's parent frame to sheet
// coordinates.
type target struct {
	top     string
	path    *figure.Path
	toSheet geom.Matrix
}

// local maps a sheet point into the path's own frame.
func (t target) local(p geom.Point) geom.Point {
	return t.toSheet.Multiply(t.path.Transform()).Invert().Apply(p)
}

// sheet maps a path-local point to sheet coordinates.
func (t target) sheet(p geom.Point) geom.Point {
	return t.toSheet.Multiply(t.path.Transform()).Apply(p)
}

// pickPath returns the topmost path within tolerance of p, looking inside
// groups.
func pickPath(ed Editor, p geom.Point, tolerance float64) (target, bool) {
	figs := ed.Model().Figures()
	for i := len(figs) - 1; i >= 0; i-- {
		var hit target
		found := false
		figure.Walk(figs[i], geom.Identity(), func(f figure.Figure, parent geom.Matrix) {
			path, ok := f.(*figure.Path)
			if !ok || !parent.Invertible() {
				return
			}
			d := path.Distance(parent.Invert().Apply(p)) * parent.ScaleFactor()
			if d <= tolerance {
				hit, found = target{top: figs[i].ID(), path: path, toSheet: parent}, true
			}
		})
		if found {
			return hit, true
		}
	}
	return target{}, false
}

// resolve finds the path again after the model may have replaced its
// figures, e.g. on undo.
func (t target) resolve(ed Editor) (target, bool) {
	if t.path == nil {
		return target{}, false
	}
	top, ok := ed.Model().Get(t.top)
	if !ok {
		return target{}, false
	}
	var out target
	found := false
	figure.Walk(top, geom.Identity(), func(f figure.Figure, parent geom.Matrix) {
		if p, ok := f.(*figure.Path); ok && p.ID() == t.path.ID() {
			out, found = target{top: t.top, path: p, toSheet: parent}, true
		}
	})
	return out, found
}

// DirectSelection edits the control points of a single path, even one
// nested in a group. Double-clicking the curve inserts a knot; Delete
// removes the knot dragged last.
type DirectSelection struct {
	target   target
	handle   int
	dragging bool
	open     bool
	knot     int // last dragged knot, -1 if none
}

func (t *DirectSelection) Name() string { return NameDirectSelection }

func (t *DirectSelection) HandleMouse(ed Editor, e input.MouseEvent) {
	switch e.Type {
	case input.MouseDown:
		t.down(ed, e)
	case input.MouseMove:
		if !t.dragging {
			return
		}
		tg, ok := t.target.resolve(ed)
		if !ok {
			return
		}
		local := tg.local(e.Pos)
		if cur, ok := tg.path.Handle(t.handle); !ok || cur.Near(local, 1e-9) {
			return
		}
		if !t.open {
			ed.Begin()
			t.open = true
		}
		tg.path.TranslateHandle(t.handle, local)
		ed.Model().Modified(tg.top)
	case input.MouseUp:
		if t.open {
			ed.Commit()
		}
		t.dragging, t.open = false, false
		ed.Invalidate()
	}
}

func (t *DirectSelection) down(ed Editor, e input.MouseEvent) {
	if tg, ok := t.target.resolve(ed); ok {
		t.target = tg
		for i := 0; ; i++ {
			h, ok := tg.path.Handle(i)
			if !ok {
				break
			}
			if tg.sheet(h).Dist(e.Pos) <= ed.Fuzziness() {
				t.handle, t.dragging = i, true
				if figure.IsKnot(i) {
					t.knot = i
				}
				return
			}
		}
		if e.DoubleClick && tg.path.Distance(tg.toSheet.Invert().Apply(e.Pos))*tg.toSheet.ScaleFactor() <= ed.Fuzziness() {
			ed.Begin()
			if i, ok := tg.path.InsertPointNear(tg.local(e.Pos)); ok {
				t.knot = i
				ed.Model().Modified(tg.top)
			}
			ed.Commit()
			return
		}
	}

	tg, ok := pickPath(ed, e.Pos, ed.Fuzziness())
	if !ok {
		t.target = target{}
		ed.SetSelection()
		return
	}
	t.target = tg
	t.knot = -1
	ed.SetSelection(tg.top)
}

func (t *DirectSelection) HandleKey(ed Editor, e input.KeyEvent) bool {
	if !e.Down {
		return false
	}
	switch {
	case e.Key == input.KeyEscape:
		t.Stop(ed)
		ed.SetSelection()
		return true
	case e.IsDelete():
		tg, ok := t.target.resolve(ed)
		if !ok || t.knot < 0 {
			return false
		}
		ed.Begin()
		if tg.path.DeletePoint(t.knot) {
			ed.Model().Modified(tg.top)
		}
		ed.Commit()
		t.knot = -1
		return true
	}
	return false
}

func (t *DirectSelection) PaintOverlay(ed Editor, pen render.Pen) {
	tg, ok := t.target.resolve(ed)
	if !ok {
		return
	}
	PaintPathHandles(pen, tg.path, tg.toSheet.Multiply(tg.path.Transform()), ed.Fuzziness())
}

func (t *DirectSelection) Stop(ed Editor) {
	if t.open {
		ed.Abort()
	}
	t.dragging, t.open = false, false
	t.target = target{}
	t.knot = -1
}

func (t *DirectSelection) AttributesChanged(ed Editor) {
	if tg, ok := t.target.resolve(ed); ok {
		ApplyAttributes(ed, []string{tg.top})
	}
}
