// Package render defines the drawing capability figures and tools paint
// through, plus two implementations: a command recorder for the web
// frontend and a rasterizer backed by gg.
package render

import "github.com/inamate/vecedit/internal/geom"

// Pen is the drawing surface. Path construction accumulates into a current
// path under the current transform; Stroke and Fill consume it.
type Pen interface {
	SetColor(hex string)
	SetLineWidth(w float64)
	SetDash(lengths ...float64)

	MoveTo(p geom.Point)
	LineTo(p geom.Point)
	CurveTo(c1, c2, p geom.Point)
	ClosePath()
	DrawCircle(center geom.Point, r float64)
	DrawRectangle(r geom.Rect)

	Stroke()
	Fill()
	FillPreserve()

	DrawText(s string, at geom.Point)
	TextWidth(s string) float64

	Push()
	Pop()
	Multiply(m geom.Matrix)
	Identity()
	Matrix() geom.Matrix

	SetClip(r geom.Rect)
	ResetClip()
}

// Tagger is implemented by pens that can attribute subsequent drawing to a
// figure. Painters call Tag when the pen supports it.
type Tagger interface {
	Tag(objectID string)
}

// Tag attributes subsequent drawing on pen to objectID if the pen supports it.
func Tag(pen Pen, objectID string) {
	if t, ok := pen.(Tagger); ok {
		t.Tag(objectID)
	}
}
