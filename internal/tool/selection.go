package tool

import (
	"math"
	"slices"

	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/render"
)

type selectGesture int

const (
	selectIdle selectGesture = iota
	selectMove
	selectMarquee
	selectScale
)

// Selection picks, moves and scales whole figures. Clicking empty space
// starts a marquee; the eight handles around the selection scale it about
// the opposite handle.
type Selection struct {
	gesture selectGesture
	mods    input.Modifiers
	last    geom.Point
	open    bool // transaction begun for the current gesture

	// marquee
	start, end geom.Point
	base       []string
	pending    []string

	// scale
	handle     int
	anchor     geom.Point
	grab       geom.Point
	transforms map[string]geom.Matrix
}

func (t *Selection) Name() string { return NameSelection }

func (t *Selection) HandleMouse(ed Editor, e input.MouseEvent) {
	t.mods = e.Mods
	switch e.Type {
	case input.MouseDown:
		t.down(ed, e)
	case input.MouseMove:
		t.move(ed, e.Pos)
	case input.MouseUp:
		t.up(ed)
	}
}

func (t *Selection) down(ed Editor, e input.MouseEvent) {
	p := e.Pos
	t.last = p
	if b, ok := selectionBounds(ed); ok {
		for i, h := range scaleHandles(b) {
			if h.Dist(p) <= ed.Fuzziness() {
				t.beginScale(ed, b, i)
				return
			}
		}
	}

	if f, ok := ed.Model().FigureAt(p, ed.Fuzziness()); ok {
		id := f.ID()
		switch {
		case e.Mods.Shift():
			if !ed.IsSelected(id) {
				ed.SetSelection(append(ed.Selection(), id)...)
			}
		case !ed.IsSelected(id):
			ed.SetSelection(id)
		}
		t.gesture = selectMove
		return
	}

	t.gesture = selectMarquee
	t.start, t.end = p, p
	t.base = nil
	if e.Mods.Shift() {
		t.base = ed.Selection()
	}
	t.pending = slices.Clone(t.base)
	ed.Invalidate()
}

func (t *Selection) move(ed Editor, p geom.Point) {
	switch t.gesture {
	case selectMove:
		d := p.Sub(t.last)
		if d == (geom.Point{}) {
			return
		}
		t.begin(ed)
		m := geom.Translate(d.X, d.Y)
		for _, id := range ed.Selection() {
			f, _ := ed.Model().Get(id)
			f.SetTransform(m.Multiply(f.Transform()))
		}
		ed.Model().Modified(ed.Selection()...)
		t.last = p
	case selectMarquee:
		t.end = p
		t.pending = slices.Clone(t.base)
		for _, id := range ed.Model().FiguresIn(geom.RectFromPoints(t.start, t.end)) {
			if !slices.Contains(t.pending, id) {
				t.pending = append(t.pending, id)
			}
		}
		ed.Invalidate()
	case selectScale:
		t.scaleTo(ed, p)
	}
}

func (t *Selection) up(ed Editor) {
	switch t.gesture {
	case selectMarquee:
		ed.SetSelection(t.pending...)
	case selectMove, selectScale:
		if t.open {
			ed.Commit()
		}
	}
	t.reset()
	ed.Invalidate()
}

func (t *Selection) begin(ed Editor) {
	if !t.open {
		ed.Begin()
		t.open = true
	}
}

func (t *Selection) reset() {
	t.gesture = selectIdle
	t.open = false
	t.base, t.pending = nil, nil
	t.transforms = nil
}

// --- Scaling ---

// scaleHandles returns the corners and edge midpoints of r clockwise from
// the top-left corner, so handle i+4 (mod 8) is opposite handle i.
func scaleHandles(r geom.Rect) [8]geom.Point {
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width, r.Y+r.Height
	xm, ym := (x0+x1)/2, (y0+y1)/2
	return [8]geom.Point{
		{X: x0, Y: y0}, {X: xm, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: ym},
		{X: x1, Y: y1}, {X: xm, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: ym},
	}
}

func (t *Selection) beginScale(ed Editor, b geom.Rect, handle int) {
	hs := scaleHandles(b)
	t.gesture = selectScale
	t.handle = handle
	t.grab = hs[handle]
	t.anchor = hs[(handle+4)%8]
	t.transforms = make(map[string]geom.Matrix)
	for _, id := range ed.Selection() {
		f, _ := ed.Model().Get(id)
		t.transforms[id] = f.Transform()
	}
}

func (t *Selection) scaleTo(ed Editor, p geom.Point) {
	sx, sy := 1.0, 1.0
	horizontal := t.handle != 1 && t.handle != 5
	vertical := t.handle != 3 && t.handle != 7
	if dx := t.grab.X - t.anchor.X; horizontal && dx != 0 {
		sx = (p.X - t.anchor.X) / dx
	}
	if dy := t.grab.Y - t.anchor.Y; vertical && dy != 0 {
		sy = (p.Y - t.anchor.Y) / dy
	}
	if t.mods.Shift() {
		switch {
		case !horizontal:
			sx = math.Abs(sy)
		case !vertical:
			sy = math.Abs(sx)
		default:
			s := math.Max(math.Abs(sx), math.Abs(sy))
			sx, sy = math.Copysign(s, sx), math.Copysign(s, sy)
		}
	}
	if sx == 0 || sy == 0 {
		return
	}
	t.begin(ed)
	m := geom.About(t.anchor, geom.Scale(sx, sy))
	for id, orig := range t.transforms {
		f, ok := ed.Model().Get(id)
		if !ok {
			continue
		}
		f.SetTransform(m.Multiply(orig))
	}
	ed.Model().Modified(ed.Selection()...)
}

// --- Keys and overlay ---

func (t *Selection) HandleKey(ed Editor, e input.KeyEvent) bool {
	if !e.Down {
		return false
	}
	switch {
	case e.Key == input.KeyEscape:
		if t.open {
			ed.Abort()
		}
		t.reset()
		ed.SetSelection()
		return true
	case e.IsDelete() && t.gesture == selectIdle:
		sel := ed.Selection()
		if len(sel) == 0 {
			return false
		}
		ed.Begin()
		ed.Model().Remove(sel...)
		ed.Commit()
		return true
	}
	return false
}

func (t *Selection) PaintOverlay(ed Editor, pen render.Pen) {
	size := ed.Fuzziness()
	if t.gesture == selectMarquee {
		PaintMarquee(pen, geom.RectFromPoints(t.start, t.end), size/4)
		for _, id := range t.pending {
			if f, ok := ed.Model().Get(id); ok {
				pen.SetColor(overlayColor)
				pen.DrawRectangle(f.Bounds())
				pen.Stroke()
			}
		}
		return
	}
	b, ok := selectionBounds(ed)
	if !ok {
		return
	}
	PaintMarquee(pen, b, size/4)
	for _, h := range scaleHandles(b) {
		PaintHandle(pen, h, size)
	}
}

func (t *Selection) Stop(ed Editor) {
	if t.open {
		ed.Abort()
	}
	t.reset()
}

// AttributesChanged restyles the selected figures.
func (t *Selection) AttributesChanged(ed Editor) {
	if sel := ed.Selection(); len(sel) > 0 {
		ApplyAttributes(ed, sel)
	}
}
