package figure

import (
	"fmt"
	"math"
	"slices"

	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/render"
)

// Group paints and moves a list of figures as one. Children live in the
// group's local frame.
type Group struct {
	id        string
	children  []Figure
	transform geom.Matrix
}

var _ Figure = (*Group)(nil)

// NewGroup wraps children, which keep their own transforms.
func NewGroup(children []Figure) *Group {
	return &Group{children: slices.Clone(children), transform: geom.Identity()}
}

func (g *Group) ID() string      { return g.id }
func (g *Group) SetID(id string) { g.id = id }
func (g *Group) Kind() Kind      { return KindGroup }

func (g *Group) Transform() geom.Matrix     { return g.transform }
func (g *Group) SetTransform(m geom.Matrix) { g.transform = m }

// Children returns the grouped figures in paint order.
func (g *Group) Children() []Figure { return slices.Clone(g.children) }

func (g *Group) Paint(pen render.Pen) {
	pen.Push()
	defer pen.Pop()
	render.Tag(pen, g.id)
	pen.Multiply(g.transform)
	for _, c := range g.children {
		c.Paint(pen)
	}
}

func (g *Group) Distance(p geom.Point) float64 {
	local := g.transform.Invert().Apply(p)
	d := math.Inf(1)
	for _, c := range g.children {
		d = min(d, c.Distance(local))
	}
	return d * g.transform.ScaleFactor()
}

func (g *Group) Bounds() geom.Rect {
	r, ok := SheetBounds(g.children)
	if !ok {
		return geom.Rect{X: g.transform[4], Y: g.transform[5]}
	}
	return g.transform.ApplyRect(r)
}

// Handle reports no handles: groups are edited through their bounding box.
func (g *Group) Handle(i int) (geom.Point, bool) {
	if i < 0 {
		panic(fmt.Sprintf("figure: negative handle index %d", i))
	}
	return geom.Point{}, false
}

func (g *Group) TranslateHandle(i int, p geom.Point) {}

func (g *Group) Clone() Figure {
	c := &Group{id: g.id, transform: g.transform, children: make([]Figure, len(g.children))}
	for i, ch := range g.children {
		c.children[i] = ch.Clone()
	}
	return c
}
