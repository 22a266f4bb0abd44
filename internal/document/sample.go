package document

import (
	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/typeid"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// NewSampleDocument returns a small drawing: a filled square, a circle and
// a group of two crossing lines.
func NewSampleDocument() *Document {
	square := polygon(geom.Pt(100, 100), geom.Pt(300, 100), geom.Pt(300, 300), geom.Pt(100, 300))
	square.SetID(typeid.NewFigureID())
	square.SetStyle(figure.Style{LineColor: "#4a4a4a", LineWidth: 2, FillColor: "#4a90d9", Filled: true})

	circle := Circle(geom.Pt(500, 200), 80)
	circle.SetID(typeid.NewFigureID())
	circle.SetStyle(figure.Style{LineColor: "#d0021b", LineWidth: 3})

	a := figure.Line(geom.Pt(0, 0), geom.Pt(120, 120))
	b := figure.Line(geom.Pt(0, 120), geom.Pt(120, 0))
	a.SetID(typeid.NewFigureID())
	b.SetID(typeid.NewFigureID())
	cross := figure.NewGroup([]figure.Figure{a, b})
	cross.SetID(typeid.NewFigureID())
	cross.SetTransform(geom.Translate(440, 380))

	return Encode(Sheet{Width: 800, Height: 600, Background: "#ffffff"}, []figure.Figure{square, circle, cross})
}

// Circle approximates a circle with four cubic segments.
func Circle(c geom.Point, r float64) *figure.Path {
	k := r * kappa
	pts := []geom.Point{
		{X: c.X + r, Y: c.Y}, {X: c.X + r, Y: c.Y + k},
		{X: c.X + k, Y: c.Y + r}, {X: c.X, Y: c.Y + r}, {X: c.X - k, Y: c.Y + r},
		{X: c.X - r, Y: c.Y + k}, {X: c.X - r, Y: c.Y}, {X: c.X - r, Y: c.Y - k},
		{X: c.X - k, Y: c.Y - r}, {X: c.X, Y: c.Y - r}, {X: c.X + k, Y: c.Y - r},
		{X: c.X + r, Y: c.Y - k}, {X: c.X + r, Y: c.Y},
	}
	p, _ := figure.NewPath(pts, true)
	return p
}

// polygon joins the corners with straight segments and closes the path.
func polygon(corners ...geom.Point) *figure.Path {
	pts := []geom.Point{corners[0]}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		pts = append(pts, a.Lerp(b, 1.0/3), a.Lerp(b, 2.0/3), b)
	}
	p, _ := figure.NewPath(pts, true)
	return p
}
