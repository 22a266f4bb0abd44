package figure

import (
	"fmt"
	"slices"

	"github.com/inamate/vecedit/internal/geom"
)

// --- Handles ---

// Handle returns control point i in the local frame.
func (p *Path) Handle(i int) (geom.Point, bool) {
	if i < 0 {
		panic(fmt.Sprintf("figure: negative handle index %d", i))
	}
	if i >= len(p.points) {
		return geom.Point{}, false
	}
	return p.points[i], true
}

// IsKnot reports whether handle i lies on the curve.
func IsKnot(i int) bool { return i%3 == 0 }

// TranslateHandle moves control point i to pt (local frame). Knots drag
// their tangents along; tangents follow the knot's continuity classifier.
func (p *Path) TranslateHandle(i int, pt geom.Point) {
	if i < 0 {
		panic(fmt.Sprintf("figure: negative handle index %d", i))
	}
	if i >= len(p.points) {
		return
	}
	if IsKnot(i) {
		p.moveKnot(i, pt.Sub(p.points[i]))
		return
	}

	knot, other, paired := p.partner(i)
	side := RightFree
	if i%3 == 2 {
		side = LeftFree
	}
	c := p.Continuity(i)
	k := p.points[knot]
	p.points[i] = pt

	switch {
	case !paired:
	case c&Symmetric != 0:
		p.points[other] = pt.Mirror(k)
	case c&side != 0:
		if !p.colinearAt(knot) {
			p.SetContinuity(knot, Corner)
		}
	default:
		dir := k.Sub(pt)
		if l := dir.Len(); l > 0 {
			p.points[other] = k.Add(dir.Mul(p.points[other].Dist(k) / l))
		}
	}
}

func (p *Path) moveKnot(i int, d geom.Point) {
	n := len(p.points)
	move := func(j int) {
		if j >= 0 && j < n {
			p.points[j] = p.points[j].Add(d)
		}
	}
	move(i - 1)
	move(i)
	move(i + 1)
	if p.closed {
		switch i {
		case 0:
			move(n - 2)
			move(n - 1)
		case n - 1:
			move(0)
			move(1)
		}
	}
}

// partner returns the knot of tangent handle i and the tangent on the other
// side of that knot. Open path endpoints have no partner.
func (p *Path) partner(i int) (knot, other int, ok bool) {
	n := len(p.points)
	if i%3 == 1 {
		knot, other = i-1, i-2
	} else {
		knot, other = i+1, i+2
	}
	switch {
	case other < 0:
		if !p.closed {
			return knot, -1, false
		}
		other = n - 2
	case other >= n:
		if !p.closed {
			return knot, -1, false
		}
		other = 1
	}
	return knot, other, true
}

// tangents returns the incoming and outgoing tangent indices of knot i,
// or -1 where the path has none.
func (p *Path) tangents(i int) (left, right int) {
	n := len(p.points)
	left, right = i-1, i+1
	if p.closed {
		if i == 0 {
			left = n - 2
		}
		if i == n-1 {
			right = 1
		}
	}
	if left < 0 {
		left = -1
	}
	if right >= n {
		right = -1
	}
	return left, right
}

func (p *Path) colinearAt(i int) bool {
	left, right := p.tangents(i)
	if left < 0 || right < 0 {
		return true
	}
	k := p.points[i]
	a := p.points[left].Sub(k)
	b := p.points[right].Sub(k)
	la, lb := a.Len(), b.Len()
	if la < 1e-9 || lb < 1e-9 {
		return true
	}
	a, b = a.Mul(1/la), b.Mul(1/lb)
	return a.Cross(b) < 1e-6 && a.Cross(b) > -1e-6 && a.Dot(b) < 0
}

// --- Curve queries and structural edits ---

// FindPointNear returns the point of the curve nearest to pt (local frame).
func (p *Path) FindPointNear(pt geom.Point) (Hit, bool) {
	return nearest(p.cubics(geom.Identity()), pt)
}

// InsertPointNear splits the segment nearest to pt at the nearest point and
// returns the index of the new knot.
func (p *Path) InsertPointNear(pt geom.Point) (int, bool) {
	hit, ok := p.FindPointNear(pt)
	if !ok {
		return -1, false
	}
	return p.InsertPoint(hit.Segment, hit.T)
}

// InsertPoint splits segment s at parameter t without changing its shape.
func (p *Path) InsertPoint(s int, t float64) (int, bool) {
	if s < 0 || s >= p.Segments() || t <= 1e-9 || t >= 1-1e-9 {
		return -1, false
	}
	c := p.Segment(s)
	left := c.Subsegment(0, t)
	right := c.Subsegment(t, 1)
	i := s * 3
	mid := []geom.Point{
		geom.FromCurve(left.P1),
		geom.FromCurve(left.P2),
		geom.FromCurve(left.P3),
		geom.FromCurve(right.P1),
		geom.FromCurve(right.P2),
	}
	p.points = slices.Concat(p.points[:i+1], mid, p.points[i+3:])
	p.cont = slices.Insert(p.cont, s+1, Colinear)
	return i + 3, true
}

// DeletePoint removes the knot owning handle i together with its tangents,
// merging the neighboring segments. It refuses when fewer than 4 control
// points would remain.
func (p *Path) DeletePoint(i int) bool {
	if i < 0 {
		panic(fmt.Sprintf("figure: negative handle index %d", i))
	}
	n := len(p.points)
	if i >= n || n-3 < 4 {
		return false
	}
	k := (i + 1) / 3 * 3
	switch {
	case p.closed && (k == 0 || k == n-1):
		p.points = slices.Concat(p.points[3:n-2], []geom.Point{p.points[2], p.points[3]})
		c := p.cont[1 : len(p.cont)-1]
		p.cont = slices.Concat(c, []Continuity{c[0]})
	case k == 0:
		p.points = slices.Clone(p.points[3:])
		p.cont = slices.Clone(p.cont[1:])
	case k == n-1:
		p.points = slices.Clone(p.points[:n-3])
		p.cont = slices.Clone(p.cont[:len(p.cont)-1])
	default:
		p.points = slices.Delete(p.points, k-1, k+2)
		p.cont = slices.Delete(p.cont, k/3, k/3+1)
	}
	return true
}
