// Package tool implements the interaction modes an editor can hand pointer
// and keyboard input to: selecting, editing handles, drawing paths and
// filling regions.
package tool

import (
	"context"
	"log/slog"
	"slices"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/fill"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
	"github.com/inamate/vecedit/internal/model"
	"github.com/inamate/vecedit/internal/render"
)

// Tool names used by Set.Lookup and the wire protocol.
const (
	NameSelection       = "select"
	NameDirectSelection = "direct"
	NamePen             = "pen"
	NamePencil          = "pencil"
	NameFill            = "fill"
)

// Editor is what a tool may use of the editor driving it. Positions handed
// to tools are already in sheet coordinates and snapped to the grid.
type Editor interface {
	Model() *model.Model

	Selection() []string
	IsSelected(id string) bool
	SetSelection(ids ...string)

	Attributes() Attributes
	// Fuzziness is the pick tolerance in sheet units.
	Fuzziness() float64
	FillOptions() fill.Options
	Context() context.Context
	Logger() *slog.Logger

	// Begin, Commit and Abort bracket one undoable user action.
	Begin()
	Commit()
	Abort()

	// SetCreating reports whether a figure is under construction.
	SetCreating(creating bool)
	Invalidate()
}

// Tool is an interaction mode. A tool keeps only transient gesture state;
// the figures it works on are referenced by ID.
type Tool interface {
	Name() string
	HandleMouse(ed Editor, e input.MouseEvent)
	// HandleKey reports whether the key was consumed.
	HandleKey(ed Editor, e input.KeyEvent) bool
	PaintOverlay(ed Editor, pen render.Pen)
	// Stop ends whatever gesture is in progress, discarding unfinished work.
	Stop(ed Editor)
	AttributesChanged(ed Editor)
}

// Attributes are the drawing settings new figures are created with.
type Attributes struct {
	LineColor string    `json:"line"`
	LineWidth float64   `json:"lineWidth"`
	Dash      []float64 `json:"dash,omitempty"`
	FillColor string    `json:"fill,omitempty"`
}

// DefaultAttributes draws 1px black lines and fills with light gray.
func DefaultAttributes() Attributes {
	return Attributes{LineColor: "#000000", LineWidth: 1, FillColor: "#cccccc"}
}

// Style converts the attributes into a figure style.
func (a Attributes) Style(filled bool) figure.Style {
	s := figure.Style{
		LineColor: a.LineColor,
		LineWidth: a.LineWidth,
		Dash:      slices.Clone(a.Dash),
		FillColor: a.FillColor,
		Filled:    filled,
	}
	if filled && s.FillColor == "" {
		s.FillColor = s.LineColor
	}
	return s
}

// --- Set ---

// Set is the collection of tools one editor switches between.
type Set struct {
	Selection       *Selection
	DirectSelection *DirectSelection
	Pen             *Pen
	Pencil          *Pencil
	Fill            *Fill
}

// NewSet returns one fresh instance of every tool.
func NewSet() *Set {
	return &Set{
		Selection:       &Selection{},
		DirectSelection: &DirectSelection{},
		Pen:             &Pen{},
		Pencil:          &Pencil{},
		Fill:            &Fill{},
	}
}

// Lookup returns the tool registered under name.
func (s *Set) Lookup(name string) (Tool, bool) {
	for _, t := range s.All() {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// All returns the tools in menu order.
func (s *Set) All() []Tool {
	return []Tool{s.Selection, s.DirectSelection, s.Pen, s.Pencil, s.Fill}
}

// --- Shared helpers ---

// ApplyAttributes restyles the paths among ids, keeping each path's filled
// flag, as one undoable action.
func ApplyAttributes(ed Editor, ids []string) {
	m := ed.Model()
	var changed []string
	ed.Begin()
	for _, id := range ids {
		f, ok := m.Get(id)
		if !ok {
			continue
		}
		figure.Walk(f, geom.Identity(), func(f figure.Figure, _ geom.Matrix) {
			if p, ok := f.(*figure.Path); ok {
				p.SetStyle(ed.Attributes().Style(p.Style().Filled))
			}
		})
		changed = append(changed, id)
	}
	if len(changed) > 0 {
		m.Modified(changed...)
	}
	ed.Commit()
}

// selectionBounds returns the union of the selected figures' bounds.
func selectionBounds(ed Editor) (geom.Rect, bool) {
	var figs []figure.Figure
	for _, id := range ed.Selection() {
		if f, ok := ed.Model().Get(id); ok {
			figs = append(figs, f)
		}
	}
	return figure.SheetBounds(figs)
}

// PaintHandle draws a square handle marker of the given size around p.
func PaintHandle(pen render.Pen, p geom.Point, size float64) {
	pen.DrawRectangle(geom.Rect{X: p.X - size/2, Y: p.Y - size/2, Width: size, Height: size})
	pen.SetColor("#ffffff")
	pen.FillPreserve()
	pen.SetColor(overlayColor)
	pen.Stroke()
}

// PaintTangent draws the line from a knot to one of its tangent points and
// a round marker on the tangent.
func PaintTangent(pen render.Pen, knot, tangent geom.Point, size float64) {
	pen.SetColor(overlayColor)
	pen.MoveTo(knot)
	pen.LineTo(tangent)
	pen.Stroke()
	pen.DrawCircle(tangent, size/2)
	pen.Fill()
}

// PaintMarquee draws a dashed selection rectangle.
func PaintMarquee(pen render.Pen, r geom.Rect, scale float64) {
	pen.Push()
	pen.SetColor(overlayColor)
	pen.SetDash(4*scale, 4*scale)
	pen.DrawRectangle(r)
	pen.Stroke()
	pen.Pop()
}

// PaintPathHandles draws every knot and tangent of p, mapped through m into
// the current pen frame.
func PaintPathHandles(pen render.Pen, p *figure.Path, m geom.Matrix, size float64) {
	pts := p.Points()
	for i := range pts {
		pts[i] = m.Apply(pts[i])
	}
	for i, pt := range pts {
		if figure.IsKnot(i) {
			continue
		}
		knot := pts[i-1]
		if i%3 == 2 {
			knot = pts[i+1]
		}
		if !knot.Near(pt, 1e-9) {
			PaintTangent(pen, knot, pt, size)
		}
	}
	for i := 0; i < len(pts); i += 3 {
		PaintHandle(pen, pts[i], size)
	}
}

const overlayColor = "#1e90ff"
