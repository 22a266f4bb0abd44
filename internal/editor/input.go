package editor

import (
	"math"
	"slices"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
)

// HandleMouse processes a pointer event in device coordinates. With a tool
// installed the event goes to the tool, mapped to snapped sheet space.
func (e *Editor) HandleMouse(ev input.MouseEvent) {
	sheet := e.ToSheet(ev.Pos)
	if e.tool != nil {
		e.tool.HandleMouse(e, ev.At(e.snap(sheet)))
		return
	}
	switch ev.Type {
	case input.MouseDown:
		e.mouseDown(ev, sheet)
	case input.MouseMove:
		e.mouseMove(sheet)
	case input.MouseUp:
		e.mouseUp()
	}
}

// HandleKey processes a key event.
func (e *Editor) HandleKey(ev input.KeyEvent) {
	if e.tool != nil {
		if e.tool.HandleKey(e, ev) {
			return
		}
		if ev.Down && ev.Key == input.KeyEscape {
			e.StopOperation()
		}
		return
	}
	if !ev.Down {
		return
	}
	switch {
	case ev.Key == input.KeyEscape:
		e.StopOperation()
	case ev.IsDelete() && e.state == StateNone:
		e.DeleteSelection()
	case ev.IsDelete() && e.state == StateEdit:
		e.deleteEditKnot()
	}
}

// Dispatch routes a wire event to HandleMouse or HandleKey.
func (e *Editor) Dispatch(ev input.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.Mouse != nil {
		e.HandleMouse(*ev.Mouse)
	} else {
		e.HandleKey(*ev.Key)
	}
	return nil
}

// --- Pointer down ---

func (e *Editor) mouseDown(ev input.MouseEvent, sheet geom.Point) {
	switch e.state {
	case StateNone:
		if e.mode == ModeRotate {
			e.rotateDown(ev, sheet)
			return
		}
		e.selectDown(ev, sheet)
	case StateEdit:
		e.editDown(ev, sheet)
	}
}

func (e *Editor) selectDown(ev input.MouseEvent, sheet geom.Point) {
	if id, i, ok := e.handleAt(ev.Pos, e.selection); ok {
		e.beginHandleDrag(id, i, StateNone)
		return
	}
	f, ok := e.model.FigureAt(sheet, e.Fuzziness())
	if !ok {
		if !ev.Mods.Ctrl() {
			e.setSelection(nil)
		}
		e.beginMarquee(sheet)
		return
	}
	id := f.ID()
	switch {
	case ev.DoubleClick:
		if _, ok := f.(*figure.Path); ok {
			e.enterEdit(id)
		}
	case ev.Mods.Ctrl():
		e.toggle(id)
	case ev.Mods.Shift():
		e.beginMarquee(sheet)
	default:
		if !e.IsSelected(id) {
			e.setSelection([]string{id})
		}
		e.state = StateMove
		e.gesture.last = e.snap(sheet)
		e.gesture.origin = StateNone
	}
}

func (e *Editor) rotateDown(ev input.MouseEvent, sheet geom.Point) {
	g := &e.gesture
	if g.hasCenter && e.ToDevice(g.center).Dist(ev.Pos) <= 2*e.opts.Fuzziness {
		e.state = StateMoveRotate
		return
	}
	f, ok := e.model.FigureAt(sheet, e.Fuzziness())
	if !ok {
		return
	}
	if !g.hasCenter || !e.IsSelected(f.ID()) {
		g.center = f.Bounds().Center()
		g.hasCenter = true
	}
	e.setSelection([]string{f.ID()})
	g.figure = f.ID()
	g.angle0 = angle(g.center, sheet)
	g.turn = 0
	e.state = StateRotate
}

func (e *Editor) editDown(ev input.MouseEvent, sheet geom.Point) {
	id := e.gesture.figure
	f, ok := e.model.Get(id)
	if !ok {
		e.StopOperation()
		return
	}
	if _, i, ok := e.handleAt(ev.Pos, []string{id}); ok {
		e.beginHandleDrag(id, i, StateEdit)
		return
	}
	if f.Distance(sheet) <= e.Fuzziness() {
		if p, ok := f.(*figure.Path); ok && ev.DoubleClick {
			e.Begin()
			if i, ok := p.InsertPointNear(p.Transform().Invert().Apply(sheet)); ok {
				e.gesture.editKnot = i
				e.model.Modified(id)
			}
			e.Commit()
		}
		return
	}
	e.StopOperation()
	e.selectDown(ev, sheet)
}

// handleAt returns the first handle of the figures ids within fuzziness of
// the device point p.
func (e *Editor) handleAt(p geom.Point, ids []string) (string, int, bool) {
	for _, id := range slices.Backward(ids) {
		f, ok := e.model.Get(id)
		if !ok {
			continue
		}
		m := e.view.Current().Multiply(f.Transform())
		for i := 0; ; i++ {
			h, ok := f.Handle(i)
			if !ok {
				break
			}
			if m.Apply(h).Dist(p) <= e.opts.Fuzziness {
				return id, i, true
			}
		}
	}
	return "", 0, false
}

func (e *Editor) beginHandleDrag(id string, i int, origin State) {
	e.state = StateMoveHandle
	e.gesture.figure = id
	e.gesture.handle = i
	e.gesture.origin = origin
	e.gesture.open = false
}

func (e *Editor) beginMarquee(sheet geom.Point) {
	e.state = StateSelectRect
	e.gesture.marqueeStart, e.gesture.marqueeEnd = sheet, sheet
	e.gesture.marqueeBase = slices.Clone(e.selection)
	e.Invalidate()
}

func (e *Editor) enterEdit(id string) {
	e.setSelection([]string{id})
	e.state = StateEdit
	e.gesture.figure = id
	e.gesture.editKnot = -1
	e.Invalidate()
}

// --- Pointer move ---

func (e *Editor) mouseMove(sheet geom.Point) {
	g := &e.gesture
	switch e.state {
	case StateMove:
		p := e.snap(sheet)
		d := p.Sub(g.last)
		if d == (geom.Point{}) {
			return
		}
		e.beginOnce()
		m := geom.Translate(d.X, d.Y)
		for _, f := range e.selectedFigures() {
			f.SetTransform(m.Multiply(f.Transform()))
		}
		e.model.Modified(e.selection...)
		g.last = p
	case StateMoveHandle:
		f, ok := e.model.Get(g.figure)
		if !ok || !f.Transform().Invertible() {
			return
		}
		local := f.Transform().Invert().Apply(e.snap(sheet))
		if cur, ok := f.Handle(g.handle); !ok || cur.Near(local, 1e-9) {
			return
		}
		e.beginOnce()
		f.TranslateHandle(g.handle, local)
		e.model.Modified(g.figure)
	case StateSelectRect:
		g.marqueeEnd = sheet
		sel := slices.Clone(g.marqueeBase)
		for _, id := range e.model.FiguresIn(geom.RectFromPoints(g.marqueeStart, g.marqueeEnd)) {
			if !slices.Contains(sel, id) {
				sel = append(sel, id)
			}
		}
		e.setSelection(sel)
		e.Invalidate()
	case StateRotate:
		g.turn = angle(g.center, sheet) - g.angle0
		e.Invalidate()
	case StateMoveRotate:
		g.center = sheet
		e.Invalidate()
	}
}

// beginOnce opens the gesture's undo grouping on its first real change.
func (e *Editor) beginOnce() {
	if !e.gesture.open {
		e.Begin()
		e.gesture.open = true
	}
}

// --- Pointer up ---

func (e *Editor) mouseUp() {
	g := &e.gesture
	switch e.state {
	case StateMove, StateMoveHandle:
		if g.open {
			e.Commit()
			g.open = false
		}
		if e.state == StateMoveHandle && figure.IsKnot(g.handle) {
			g.editKnot = g.handle
		}
		e.state = g.origin
		if e.state == StateNone {
			g.figure = ""
		}
	case StateSelectRect, StateMoveRotate:
		e.state = StateNone
	case StateRotate:
		e.bakeRotation()
		e.state = StateNone
	}
	e.Invalidate()
}

// bakeRotation folds the live rotation into the target's transform.
func (e *Editor) bakeRotation() {
	g := &e.gesture
	f, ok := e.model.Get(g.figure)
	if !ok || g.turn == 0 {
		return
	}
	e.Begin()
	f.SetTransform(geom.About(g.center, geom.Rotate(g.turn)).Multiply(f.Transform()))
	e.model.Modified(g.figure)
	e.Commit()
	g.turn = 0
	e.log.Debug("rotation applied", "figure", g.figure)
}

func (e *Editor) deleteEditKnot() {
	g := &e.gesture
	f, ok := e.model.Get(g.figure)
	p, isPath := f.(*figure.Path)
	if !ok || !isPath || g.editKnot < 0 {
		return
	}
	e.Begin()
	if p.DeletePoint(g.editKnot) {
		e.model.Modified(g.figure)
	}
	e.Commit()
	g.editKnot = -1
}

func angle(center, p geom.Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}
