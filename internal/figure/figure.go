// Package figure holds the editable shapes of a document: cubic Bezier paths
// and groups of figures.
package figure

import (
	"slices"

	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/render"
)

// Kind identifies a figure variant in serialized documents.
type Kind string

const (
	KindPath  Kind = "path"
	KindGroup Kind = "group"
)

// Figure is the capability every shape offers to models, editors and tools.
//
// Handles are indexed from 0 and addressed in the figure's local frame, i.e.
// before Transform is applied. Distance and Bounds work in the parent frame.
type Figure interface {
	ID() string
	SetID(id string)
	Kind() Kind

	Paint(pen render.Pen)
	// Distance from p to the figure's visible outline; 0 inside a filled area.
	Distance(p geom.Point) float64
	Bounds() geom.Rect

	Transform() geom.Matrix
	SetTransform(m geom.Matrix)

	// Handle reports the i-th handle, or false once i passes the last one.
	Handle(i int) (geom.Point, bool)
	TranslateHandle(i int, p geom.Point)

	// Clone returns a deep copy that shares no mutable state with the original.
	Clone() Figure
}

// Style is the paint attributes of a figure.
type Style struct {
	LineColor string    `json:"line"`
	LineWidth float64   `json:"lineWidth"`
	Dash      []float64 `json:"dash,omitempty"`
	FillColor string    `json:"fill,omitempty"`
	Filled    bool      `json:"filled"`
}

// DefaultStyle is a 1px black unfilled stroke.
func DefaultStyle() Style {
	return Style{LineColor: "#000000", LineWidth: 1}
}

func (s Style) clone() Style {
	s.Dash = slices.Clone(s.Dash)
	return s
}

// Walk calls fn for f and, depth first, every figure nested inside groups.
// The matrix passed along maps the visited figure's parent frame to the
// frame f lives in.
func Walk(f Figure, parent geom.Matrix, fn func(f Figure, parent geom.Matrix)) {
	fn(f, parent)
	if g, ok := f.(*Group); ok {
		m := parent.Multiply(g.Transform())
		for _, c := range g.Children() {
			Walk(c, m, fn)
		}
	}
}

// SheetBounds returns the bounds of figures in the frame they live in.
func SheetBounds(figs []Figure) (geom.Rect, bool) {
	var result geom.Rect
	first := true
	for _, f := range figs {
		b := f.Bounds()
		if first {
			result = b
			first = false
		} else {
			result = result.Union(b)
		}
	}
	return result, !first
}
