package tool

import (
	"iter"

	"honnef.co/go/curve"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/render"
)

// pencilAccuracy is the maximum distance, in sheet units, between the sampled
// trail and the fitted curve.
const pencilAccuracy = 1.0

// pencilAngle is the tangent of the smallest trail turn kept as a corner.
const pencilAngle = 1.0

// Pencil draws free-hand. The pointer trail is fitted with cubic Beziers on
// release. A trail starting or ending on an endpoint of an open path
// extends that path; a trail ending where it started is closed.
type Pencil struct {
	trail []geom.Point
}

func (t *Pencil) Name() string { return NamePencil }

func (t *Pencil) HandleMouse(ed Editor, e input.MouseEvent) {
	switch e.Type {
	case input.MouseDown:
		t.trail = []geom.Point{e.Pos}
		ed.SetCreating(true)
	case input.MouseMove:
		if len(t.trail) == 0 || t.trail[len(t.trail)-1] == e.Pos {
			return
		}
		t.trail = append(t.trail, e.Pos)
		ed.Invalidate()
	case input.MouseUp:
		if len(t.trail) > 0 {
			t.finish(ed)
		}
	}
}

func (t *Pencil) finish(ed Editor) {
	defer t.discard(ed)
	pts := fitTrail(t.trail)
	if len(pts) < 4 {
		return
	}
	fuzz := ed.Fuzziness()

	ed.Begin()
	defer ed.Commit()

	if id, ok := t.splice(ed, pts, fuzz); ok {
		ed.SetSelection(id)
		return
	}

	closed := len(pts) > 4 && pts[0].Dist(pts[len(pts)-1]) <= fuzz
	if closed {
		pts[len(pts)-1] = pts[0]
	}
	p, err := figure.NewPath(pts, closed)
	if err != nil {
		ed.Logger().Warn("pencil path rejected", "points", len(pts), "error", err)
		return
	}
	p.SetStyle(ed.Attributes().Style(false))
	ed.Model().Add(p)
	ed.SetSelection(p.ID())
}

// splice joins pts onto the first open top-level path with an endpoint
// within fuzz of either end of the trail.
func (t *Pencil) splice(ed Editor, pts []geom.Point, fuzz float64) (string, bool) {
	figs := ed.Model().Figures()
	for i := len(figs) - 1; i >= 0; i-- {
		p, ok := figs[i].(*figure.Path)
		if !ok || p.Closed() {
			continue
		}
		m := p.Transform()
		if !m.Invertible() {
			continue
		}
		own := p.Points()
		head, tail := m.Apply(own[0]), m.Apply(own[len(own)-1])

		trail := pts
		switch {
		case trail[0].Dist(tail) <= fuzz:
		case trail[0].Dist(head) <= fuzz:
			p.Reverse()
		case trail[len(trail)-1].Dist(tail) <= fuzz:
			trail = reversed(trail)
		case trail[len(trail)-1].Dist(head) <= fuzz:
			p.Reverse()
			trail = reversed(trail)
		default:
			continue
		}

		inv := m.Invert()
		local := make([]geom.Point, len(trail))
		for j, q := range trail {
			local[j] = inv.Apply(q)
		}
		own = p.Points()
		local[0] = own[len(own)-1]
		ext, err := figure.NewPath(local, false)
		if err != nil {
			continue
		}
		p.Append(ext, figure.Corner)
		all := p.Points()
		if all[0].Dist(all[len(all)-1])*m.ScaleFactor() <= fuzz && p.Segments() > 1 {
			p.TranslateHandle(len(all)-1, all[0])
			if err := p.Close(); err != nil {
				ed.Logger().Warn("pencil splice left open", "figure", p.ID(), "error", err)
			}
		}
		ed.Model().Modified(p.ID())
		return p.ID(), true
	}
	return "", false
}

func reversed(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// fitTrail fits a cubic Bezier chain to a polyline and returns its control
// points, or nil when the trail is too short to form a segment.
func fitTrail(trail []geom.Point) []geom.Point {
	if len(trail) < 2 {
		return nil
	}
	opts := curve.DefaultSimplifyOptions
	opts.AngleThresh = pencilAngle

	pts := []geom.Point{trail[0]}
	last := trail[0]
	for el := range curve.Simplify(polyline(trail), pencilAccuracy, opts) {
		switch el.Kind {
		case curve.LineToKind:
			p := geom.FromCurve(el.P0)
			pts = append(pts, last.Lerp(p, 1.0/3), last.Lerp(p, 2.0/3), p)
			last = p
		case curve.QuadToKind:
			c, p := geom.FromCurve(el.P0), geom.FromCurve(el.P1)
			pts = append(pts, last.Lerp(c, 2.0/3), p.Lerp(c, 2.0/3), p)
			last = p
		case curve.CubicToKind:
			p := geom.FromCurve(el.P2)
			pts = append(pts, geom.FromCurve(el.P0), geom.FromCurve(el.P1), p)
			last = p
		}
	}
	if len(pts) < 4 {
		return nil
	}
	return pts
}

func polyline(pts []geom.Point) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		if !yield(curve.MoveTo(pts[0].Curve())) {
			return
		}
		for _, p := range pts[1:] {
			if !yield(curve.LineTo(p.Curve())) {
				return
			}
		}
	}
}

func (t *Pencil) discard(ed Editor) {
	t.trail = nil
	ed.SetCreating(false)
	ed.Invalidate()
}

func (t *Pencil) HandleKey(ed Editor, e input.KeyEvent) bool {
	if e.Down && e.Key == input.KeyEscape && t.trail != nil {
		t.discard(ed)
		return true
	}
	return false
}

func (t *Pencil) PaintOverlay(ed Editor, pen render.Pen) {
	if len(t.trail) < 2 {
		return
	}
	a := ed.Attributes()
	pen.SetColor(a.LineColor)
	pen.SetLineWidth(a.LineWidth)
	pen.MoveTo(t.trail[0])
	for _, p := range t.trail[1:] {
		pen.LineTo(p)
	}
	pen.Stroke()
}

func (t *Pencil) Stop(ed Editor) {
	if t.trail != nil {
		t.discard(ed)
	}
}

func (t *Pencil) AttributesChanged(ed Editor) {}
