package tool

import (
	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/render"
)

type penKnot struct {
	p, in, out geom.Point
	smooth     bool
}

// Pen builds a path knot by knot. A click adds a corner knot, dragging
// before release pulls out a symmetric tangent pair. Clicking near the
// first knot closes the path; Enter or a double-click finishes it open.
// Escape discards it.
type Pen struct {
	knots    []penKnot
	pressed  bool
	hover    geom.Point
	hovering bool
}

func (t *Pen) Name() string { return NamePen }

func (t *Pen) HandleMouse(ed Editor, e input.MouseEvent) {
	switch e.Type {
	case input.MouseDown:
		t.down(ed, e)
	case input.MouseMove:
		t.hover, t.hovering = e.Pos, true
		if t.pressed && len(t.knots) > 0 {
			k := &t.knots[len(t.knots)-1]
			k.out = e.Pos
			k.in = e.Pos.Mirror(k.p)
			k.smooth = !e.Pos.Near(k.p, 1e-9)
		}
		ed.Invalidate()
	case input.MouseUp:
		t.pressed = false
	case input.MouseLeave:
		t.hovering = false
		ed.Invalidate()
	}
}

func (t *Pen) down(ed Editor, e input.MouseEvent) {
	p := e.Pos
	switch {
	case e.DoubleClick && len(t.knots) >= 2:
		t.commit(ed, false)
		return
	case len(t.knots) >= 2 && p.Dist(t.knots[0].p) <= ed.Fuzziness():
		t.knots = append(t.knots, penKnot{p: p, in: p, out: p})
		t.commit(ed, true)
		return
	}
	t.knots = append(t.knots, penKnot{p: p, in: p, out: p})
	t.pressed = true
	ed.SetCreating(true)
	ed.Invalidate()
}

// points lays the knots out as path control points.
func (t *Pen) points(closed bool) []geom.Point {
	pts := []geom.Point{t.knots[0].p}
	for j := 1; j < len(t.knots); j++ {
		pts = append(pts, t.knots[j-1].out, t.knots[j].in, t.knots[j].p)
	}
	if closed {
		last := t.knots[len(t.knots)-1]
		pts = append(pts, last.out, t.knots[0].in, t.knots[0].p)
	}
	return pts
}

func (t *Pen) commit(ed Editor, closed bool) {
	defer t.discard(ed)
	p, err := figure.NewPath(t.points(closed), closed)
	if err != nil {
		ed.Logger().Warn("pen path rejected", "knots", len(t.knots), "error", err)
		return
	}
	for j, k := range t.knots {
		if k.smooth {
			p.SetContinuity(3*j, figure.Symmetric)
		}
	}
	p.SetStyle(ed.Attributes().Style(false))

	ed.Begin()
	ed.Model().Add(p)
	ed.Commit()
	ed.SetSelection(p.ID())
	ed.Logger().Debug("pen path created", "figure", p.ID(), "points", p.Len(), "closed", closed)
}

func (t *Pen) discard(ed Editor) {
	t.knots = nil
	t.pressed = false
	ed.SetCreating(false)
	ed.Invalidate()
}

func (t *Pen) HandleKey(ed Editor, e input.KeyEvent) bool {
	if !e.Down || len(t.knots) == 0 {
		return false
	}
	switch {
	case e.Key == input.KeyEscape:
		t.discard(ed)
	case e.Key == input.KeyEnter:
		if len(t.knots) >= 2 {
			t.commit(ed, false)
		} else {
			t.discard(ed)
		}
	case e.IsDelete():
		t.knots = t.knots[:len(t.knots)-1]
		if len(t.knots) == 0 {
			t.discard(ed)
		}
		ed.Invalidate()
	default:
		return false
	}
	return true
}

func (t *Pen) PaintOverlay(ed Editor, pen render.Pen) {
	if len(t.knots) == 0 {
		return
	}
	a := ed.Attributes()
	pts := t.points(false)
	pen.SetColor(a.LineColor)
	pen.SetLineWidth(a.LineWidth)
	pen.MoveTo(pts[0])
	for i := 1; i+2 < len(pts); i += 3 {
		pen.CurveTo(pts[i], pts[i+1], pts[i+2])
	}
	if t.hovering && !t.pressed {
		last := t.knots[len(t.knots)-1]
		pen.CurveTo(last.out, t.hover, t.hover)
	}
	pen.Stroke()

	size := ed.Fuzziness()
	last := t.knots[len(t.knots)-1]
	if last.smooth {
		PaintTangent(pen, last.p, last.in, size)
		PaintTangent(pen, last.p, last.out, size)
	}
	for _, k := range t.knots {
		PaintHandle(pen, k.p, size)
	}
}

func (t *Pen) Stop(ed Editor) {
	if len(t.knots) > 0 {
		t.discard(ed)
	}
}

func (t *Pen) AttributesChanged(ed Editor) { ed.Invalidate() }
