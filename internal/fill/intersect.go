package fill

import (
	"math"
	"slices"

	"honnef.co/go/curve"
)

const maxIntersectDepth = 40

// intersectCubics reports the parameter pairs where a and b cross. Pieces
// whose control hulls are disjoint are rejected; the rest are subdivided
// until both are flat, then their chords are intersected.
func intersectCubics(a, b curve.CubicBez, eps float64) [][2]float64 {
	var hits [][2]float64
	var rec func(a curve.CubicBez, a0, a1 float64, b curve.CubicBez, b0, b1 float64, depth int)
	rec = func(a curve.CubicBez, a0, a1 float64, b curve.CubicBez, b0, b1 float64, depth int) {
		if !hullsOverlap(a, b, eps) {
			return
		}
		flatA, flatB := isFlat(a, eps/8), isFlat(b, eps/8)
		if depth >= maxIntersectDepth || (flatA && flatB) {
			if s, u, ok := chordIntersection(a, b); ok {
				hits = append(hits, [2]float64{a0 + (a1-a0)*s, b0 + (b1-b0)*u})
			}
			return
		}
		am, bm := (a0+a1)/2, (b0+b1)/2
		switch {
		case flatA:
			bl, br := b.Subdivide()
			rec(a, a0, a1, bl, b0, bm, depth+1)
			rec(a, a0, a1, br, bm, b1, depth+1)
		case flatB:
			al, ar := a.Subdivide()
			rec(al, a0, am, b, b0, b1, depth+1)
			rec(ar, am, a1, b, b0, b1, depth+1)
		default:
			al, ar := a.Subdivide()
			bl, br := b.Subdivide()
			rec(al, a0, am, bl, b0, bm, depth+1)
			rec(al, a0, am, br, bm, b1, depth+1)
			rec(ar, am, a1, bl, b0, bm, depth+1)
			rec(ar, am, a1, br, bm, b1, depth+1)
		}
	}
	rec(a, 0, 1, b, 0, 1, 0)

	// Neighboring leaves share endpoints and may report one crossing twice.
	slices.SortFunc(hits, func(x, y [2]float64) int {
		switch {
		case x[0] < y[0]:
			return -1
		case x[0] > y[0]:
			return 1
		}
		return 0
	})
	out := hits[:0]
	for _, h := range hits {
		if len(out) > 0 {
			last := out[len(out)-1]
			if a.Eval(last[0]).Distance(a.Eval(h[0])) <= eps {
				continue
			}
		}
		out = append(out, h)
	}
	return out
}

func hullsOverlap(a, b curve.CubicBez, eps float64) bool {
	ax0, ax1 := min(a.P0.X, a.P1.X, a.P2.X, a.P3.X), max(a.P0.X, a.P1.X, a.P2.X, a.P3.X)
	ay0, ay1 := min(a.P0.Y, a.P1.Y, a.P2.Y, a.P3.Y), max(a.P0.Y, a.P1.Y, a.P2.Y, a.P3.Y)
	bx0, bx1 := min(b.P0.X, b.P1.X, b.P2.X, b.P3.X), max(b.P0.X, b.P1.X, b.P2.X, b.P3.X)
	by0, by1 := min(b.P0.Y, b.P1.Y, b.P2.Y, b.P3.Y), max(b.P0.Y, b.P1.Y, b.P2.Y, b.P3.Y)
	return ax0 <= bx1+eps && bx0 <= ax1+eps && ay0 <= by1+eps && by0 <= ay1+eps
}

func isFlat(c curve.CubicBez, tolerance float64) bool {
	chord := c.P3.Sub(c.P0)
	l := chord.Hypot()
	if l < tolerance {
		return c.P1.Distance(c.P0) <= tolerance && c.P2.Distance(c.P0) <= tolerance
	}
	return math.Abs(chord.Cross(c.P1.Sub(c.P0)))/l <= tolerance &&
		math.Abs(chord.Cross(c.P2.Sub(c.P0)))/l <= tolerance
}

// chordIntersection intersects the segments P0-P3 of a and b. Parallel
// chords never intersect.
func chordIntersection(a, b curve.CubicBez) (s, u float64, ok bool) {
	const tol = 1e-9
	r := a.P3.Sub(a.P0)
	q := b.P3.Sub(b.P0)
	denom := r.Cross(q)
	if math.Abs(denom) < 1e-12 {
		return 0, 0, false
	}
	w := b.P0.Sub(a.P0)
	s = w.Cross(q) / denom
	u = w.Cross(r) / denom
	if s < -tol || s > 1+tol || u < -tol || u > 1+tol {
		return 0, 0, false
	}
	return min(max(s, 0), 1), min(max(u, 0), 1), true
}

func reverseCubic(c curve.CubicBez) curve.CubicBez {
	return curve.CubicBez{P0: c.P3, P1: c.P2, P2: c.P1, P3: c.P0}
}
