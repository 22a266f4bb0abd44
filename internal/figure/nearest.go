package figure

import (
	"math"

	"honnef.co/go/curve"

	"github.com/inamate/vecedit/internal/geom"
)

// Hit locates the point of a path nearest to a query point.
type Hit struct {
	Segment int        `json:"segment"`
	T       float64    `json:"t"`
	Dist    float64    `json:"dist"`
	Point   geom.Point `json:"point"`
}

const (
	flatness       = 1e-3
	maxSubdivision = 24
	refineSteps    = 60
)

type nearestSearch struct {
	p    curve.Point
	best Hit
	span float64
}

// nearest finds the point on cubics closest to pt. Candidate regions come
// from de Casteljau subdivision pruned by control-point hulls; the winner is
// then refined on the exact curve.
func nearest(cubics []curve.CubicBez, pt geom.Point) (Hit, bool) {
	if len(cubics) == 0 {
		return Hit{}, false
	}
	s := nearestSearch{p: pt.Curve(), best: Hit{Dist: math.Inf(1)}}
	for i, c := range cubics {
		s.subdivide(c, i, 0, 1, 0)
	}
	s.refine(cubics[s.best.Segment])
	return s.best, true
}

func (s *nearestSearch) subdivide(c curve.CubicBez, seg int, t0, t1 float64, depth int) {
	if hullDistance(c, s.p) >= s.best.Dist {
		return
	}
	if depth >= maxSubdivision || isFlat(c) {
		u := projectOnChord(c, s.p)
		q := c.P0.Lerp(c.P3, u)
		if d := q.Distance(s.p); d < s.best.Dist {
			s.best = Hit{Segment: seg, T: t0 + (t1-t0)*u, Dist: d, Point: geom.FromCurve(q)}
			s.span = t1 - t0
		}
		return
	}
	a, b := c.Subdivide()
	mid := (t0 + t1) / 2
	if hullDistance(a, s.p) <= hullDistance(b, s.p) {
		s.subdivide(a, seg, t0, mid, depth+1)
		s.subdivide(b, seg, mid, t1, depth+1)
	} else {
		s.subdivide(b, seg, mid, t1, depth+1)
		s.subdivide(a, seg, t0, mid, depth+1)
	}
}

// refine runs a golden-section search around the best leaf.
func (s *nearestSearch) refine(c curve.CubicBez) {
	dist := func(t float64) float64 { return c.Eval(t).Distance(s.p) }
	lo := max(0, s.best.T-s.span)
	hi := min(1, s.best.T+s.span)
	const phi = 0.6180339887498949
	x1 := hi - phi*(hi-lo)
	x2 := lo + phi*(hi-lo)
	f1, f2 := dist(x1), dist(x2)
	for range refineSteps {
		if f1 < f2 {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - phi*(hi-lo)
			f1 = dist(x1)
		} else {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + phi*(hi-lo)
			f2 = dist(x2)
		}
	}
	t := (lo + hi) / 2
	candidates := []float64{t, s.best.T, lo, hi}
	bestT, bestD := s.best.T, math.Inf(1)
	for _, ct := range candidates {
		if d := dist(ct); d < bestD {
			bestT, bestD = ct, d
		}
	}
	s.best.T = bestT
	s.best.Dist = bestD
	s.best.Point = geom.FromCurve(c.Eval(bestT))
}

// hullDistance is a lower bound of the distance from p to c: the distance
// to the bounding box of its control points.
func hullDistance(c curve.CubicBez, p curve.Point) float64 {
	minX := min(c.P0.X, c.P1.X, c.P2.X, c.P3.X)
	maxX := max(c.P0.X, c.P1.X, c.P2.X, c.P3.X)
	minY := min(c.P0.Y, c.P1.Y, c.P2.Y, c.P3.Y)
	maxY := max(c.P0.Y, c.P1.Y, c.P2.Y, c.P3.Y)
	dx := max(minX-p.X, 0, p.X-maxX)
	dy := max(minY-p.Y, 0, p.Y-maxY)
	return math.Hypot(dx, dy)
}

func isFlat(c curve.CubicBez) bool {
	chord := c.P3.Sub(c.P0)
	l := chord.Hypot()
	if l < flatness {
		return c.P1.Distance(c.P0) <= flatness && c.P2.Distance(c.P0) <= flatness
	}
	d1 := math.Abs(chord.Cross(c.P1.Sub(c.P0))) / l
	d2 := math.Abs(chord.Cross(c.P2.Sub(c.P0))) / l
	return d1 <= flatness && d2 <= flatness
}

func projectOnChord(c curve.CubicBez, p curve.Point) float64 {
	chord := c.P3.Sub(c.P0)
	l2 := chord.Hypot2()
	if l2 == 0 {
		return 0
	}
	u := p.Sub(c.P0).Dot(chord) / l2
	return min(max(u, 0), 1)
}
