package figure

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"honnef.co/go/curve"

	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/render"
)

// Continuity rules how dragging one tangent of a knot affects the other.
type Continuity uint8

const (
	// Colinear keeps both tangents on one line; their lengths are free.
	Colinear Continuity = 0
	// LeftFree lets the incoming tangent move on its own.
	LeftFree Continuity = 1
	// RightFree lets the outgoing tangent move on its own.
	RightFree Continuity = 2
	// Corner lets both tangents move independently.
	Corner Continuity = LeftFree | RightFree
	// Symmetric mirrors one tangent through the knot when the other moves.
	Symmetric Continuity = 4
)

var (
	ErrTooFewPoints = errors.New("path needs at least 4 control points")
	ErrPointCount   = errors.New("path control point count must be 3n+1")
	ErrNotClosable  = errors.New("path endpoints do not coincide")
)

// Path is a chain of cubic Bezier segments. Points are laid out as
// K0 R0 L1 K1 R1 ... Ln Kn: every third point is a knot, the points around it
// are its tangents. A closed path repeats its first knot as the last point.
type Path struct {
	id        string
	points    []geom.Point
	cont      []Continuity // one per knot, cont[(i+1)/3] for handle i
	closed    bool
	style     Style
	transform geom.Matrix
}

var _ Figure = (*Path)(nil)

// NewPath builds a path from raw control points. Knot classifiers are
// inferred: colinear where the tangents line up, corner elsewhere.
func NewPath(points []geom.Point, closed bool) (*Path, error) {
	if err := checkCount(len(points)); err != nil {
		return nil, err
	}
	p := &Path{
		points:    slices.Clone(points),
		closed:    closed,
		style:     DefaultStyle(),
		transform: geom.Identity(),
	}
	if closed && !p.points[0].Near(p.points[len(p.points)-1], 1e-9) {
		return nil, ErrNotClosable
	}
	p.cont = make([]Continuity, p.knots())
	for k := range p.cont {
		if p.colinearAt(k * 3) {
			p.cont[k] = Colinear
		} else {
			p.cont[k] = Corner
		}
	}
	if closed {
		p.cont[len(p.cont)-1] = p.cont[0]
	}
	return p, nil
}

// Line returns a single straight segment from a to b.
func Line(a, b geom.Point) *Path {
	p, _ := NewPath([]geom.Point{a, a.Lerp(b, 1.0/3), a.Lerp(b, 2.0/3), b}, false)
	return p
}

func checkCount(n int) error {
	if n < 4 {
		return fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}
	if n%3 != 1 {
		return fmt.Errorf("%w: got %d", ErrPointCount, n)
	}
	return nil
}

func (p *Path) ID() string      { return p.id }
func (p *Path) SetID(id string) { p.id = id }
func (p *Path) Kind() Kind      { return KindPath }

func (p *Path) Transform() geom.Matrix     { return p.transform }
func (p *Path) SetTransform(m geom.Matrix) { p.transform = m }

func (p *Path) Style() Style         { return p.style.clone() }
func (p *Path) SetStyle(s Style)     { p.style = s.clone() }
func (p *Path) Closed() bool         { return p.closed }
func (p *Path) Len() int             { return len(p.points) }
func (p *Path) Points() []geom.Point { return slices.Clone(p.points) }
func (p *Path) Segments() int        { return (len(p.points) - 1) / 3 }

func (p *Path) knots() int { return (len(p.points)-1)/3 + 1 }

// Continuity returns the classifier of the knot owning handle i.
func (p *Path) Continuity(i int) Continuity {
	return p.cont[(i+1)/3]
}

// SetContinuity sets the classifier of the knot owning handle i.
func (p *Path) SetContinuity(i int, c Continuity) {
	k := (i + 1) / 3
	p.cont[k] = c
	if p.closed {
		switch k {
		case 0:
			p.cont[len(p.cont)-1] = c
		case len(p.cont) - 1:
			p.cont[0] = c
		}
	}
}

// Segment returns segment s in the local frame.
func (p *Path) Segment(s int) curve.CubicBez {
	i := s * 3
	return curve.CubicBez{
		P0: p.points[i].Curve(),
		P1: p.points[i+1].Curve(),
		P2: p.points[i+2].Curve(),
		P3: p.points[i+3].Curve(),
	}
}

// cubics returns every segment mapped through m.
func (p *Path) cubics(m geom.Matrix) []curve.CubicBez {
	out := make([]curve.CubicBez, p.Segments())
	aff := m.Affine()
	for s := range out {
		out[s] = p.Segment(s).Transform(aff)
	}
	return out
}

// BezPath returns the path mapped through m.
func (p *Path) BezPath(m geom.Matrix) curve.BezPath {
	var b curve.BezPath
	for s, c := range p.cubics(m) {
		if s == 0 {
			b.MoveTo(c.P0)
		}
		b.CubicTo(c.P1, c.P2, c.P3)
	}
	if p.closed {
		b.ClosePath()
	}
	return b
}

// Close joins the endpoints. They must already coincide.
func (p *Path) Close() error {
	if !p.points[0].Near(p.points[len(p.points)-1], 1e-9) {
		return ErrNotClosable
	}
	p.points[len(p.points)-1] = p.points[0]
	p.closed = true
	p.cont[len(p.cont)-1] = p.cont[0]
	return nil
}

// Reverse flips the direction of an open path.
func (p *Path) Reverse() {
	slices.Reverse(p.points)
	slices.Reverse(p.cont)
	for k, c := range p.cont {
		if c == LeftFree || c == RightFree {
			p.cont[k] = c ^ Corner
		}
	}
}

// Append splices other onto the end of p. The first point of other
// replaces the last knot of p, so both must be in the same frame.
func (p *Path) Append(other *Path, joint Continuity) {
	p.points = append(p.points[:len(p.points)-1], other.points...)
	p.cont[len(p.cont)-1] = joint
	p.cont = append(p.cont, other.cont[1:]...)
}

// LocalBounds returns the tight bounding box in the local frame.
func (p *Path) LocalBounds() geom.Rect {
	return boundsOf(p.cubics(geom.Identity()))
}

// Bounds returns the tight bounding box of the transformed curve.
func (p *Path) Bounds() geom.Rect {
	return boundsOf(p.cubics(p.transform))
}

func boundsOf(cubics []curve.CubicBez) geom.Rect {
	var result geom.Rect
	for i, c := range cubics {
		bb := c.BoundingBox()
		r := geom.RectFromPoints(geom.Pt(bb.X0, bb.Y0), geom.Pt(bb.X1, bb.Y1))
		if i == 0 {
			result = r
		} else {
			result = result.Union(r)
		}
	}
	return result
}

// Distance measures from p in the parent frame. Points inside a closed,
// filled path are at distance 0.
func (p *Path) Distance(pt geom.Point) float64 {
	if p.style.Filled && p.closed && p.BezPath(p.transform).Winding(pt.Curve()) != 0 {
		return 0
	}
	hit, ok := nearest(p.cubics(p.transform), pt)
	if !ok {
		return math.Inf(1)
	}
	return hit.Dist
}

// Contains reports whether pt, in the parent frame, lies inside the closed path.
func (p *Path) Contains(pt geom.Point) bool {
	return p.closed && p.BezPath(p.transform).Winding(pt.Curve()) != 0
}

func (p *Path) Paint(pen render.Pen) {
	pen.Push()
	defer pen.Pop()
	render.Tag(pen, p.id)
	pen.Multiply(p.transform)

	stroke := p.style.LineColor != "" && p.style.LineWidth > 0
	fill := p.style.Filled && p.closed
	if !stroke && !fill {
		return
	}
	p.trace(pen)
	if fill {
		pen.SetColor(p.style.FillColor)
		if !stroke {
			pen.Fill()
			return
		}
		pen.FillPreserve()
	}
	pen.SetColor(p.style.LineColor)
	pen.SetLineWidth(p.style.LineWidth)
	pen.SetDash(p.style.Dash...)
	pen.Stroke()
}

// trace feeds the local outline to pen without painting it.
func (p *Path) trace(pen render.Pen) {
	pen.MoveTo(p.points[0])
	for i := 1; i+2 < len(p.points); i += 3 {
		pen.CurveTo(p.points[i], p.points[i+1], p.points[i+2])
	}
	if p.closed {
		pen.ClosePath()
	}
}

func (p *Path) Clone() Figure {
	c := *p
	c.points = slices.Clone(p.points)
	c.cont = slices.Clone(p.cont)
	c.style = p.style.clone()
	return &c
}
