package editor

import (
	"math"

	"github.com/inamate/vecedit/internal/geom"
)

// View returns the sheet-to-device transform.
func (e *Editor) View() geom.Matrix { return e.view.Current() }

// SetView replaces the sheet-to-device transform. Degenerate matrices are
// ignored.
func (e *Editor) SetView(m geom.Matrix) {
	if !m.Invertible() {
		return
	}
	e.view.Set(m)
	e.Invalidate()
}

// ToSheet maps a device point into sheet coordinates.
func (e *Editor) ToSheet(p geom.Point) geom.Point { return e.view.Current().Invert().Apply(p) }

// ToDevice maps a sheet point into device coordinates.
func (e *Editor) ToDevice(p geom.Point) geom.Point { return e.view.Current().Apply(p) }

// Pan shifts the view by a device distance.
func (e *Editor) Pan(dx, dy float64) {
	e.SetView(geom.Translate(dx, dy).Multiply(e.view.Current()))
}

// Zoom scales the view by factor, keeping the device point at fixed.
func (e *Editor) Zoom(factor float64, at geom.Point) {
	if factor <= 0 {
		return
	}
	e.SetView(geom.About(at, geom.Scale(factor, factor)).Multiply(e.view.Current()))
}

// RotateView turns the view by radians about the device point at.
func (e *Editor) RotateView(radians float64, at geom.Point) {
	e.SetView(geom.About(at, geom.Rotate(radians)).Multiply(e.view.Current()))
}

// ShearView shears the view about the device point at.
func (e *Editor) ShearView(sx, sy float64, at geom.Point) {
	e.SetView(geom.About(at, geom.Shear(sx, sy)).Multiply(e.view.Current()))
}

// ResetView returns to the identity view.
func (e *Editor) ResetView() { e.SetView(geom.Identity()) }

// PushView saves the current view.
func (e *Editor) PushView() { e.view.Push() }

// PopView restores the last saved view.
func (e *Editor) PopView() bool {
	if !e.view.Pop() {
		return false
	}
	e.Invalidate()
	return true
}

// SetSheet changes the paper area and its color.
func (e *Editor) SetSheet(r geom.Rect, background string) {
	e.opts.Sheet = r
	e.opts.Background = background
	e.Invalidate()
}

// SetGrid changes the grid step and whether positions snap to it.
func (e *Editor) SetGrid(size float64, snap bool) {
	e.opts.GridSize = size
	e.opts.Snap = snap
	e.Invalidate()
}

// snap quantizes a sheet point to the grid when snapping is on.
func (e *Editor) snap(p geom.Point) geom.Point {
	g := e.opts.GridSize
	if !e.opts.Snap || g <= 0 {
		return p
	}
	return geom.Pt(math.Round(p.X/g)*g, math.Round(p.Y/g)*g)
}
