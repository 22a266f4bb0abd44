package figure

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/vecedit/internal/geom"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func assertNear(t *testing.T, got, want geom.Point, epsilon float64) {
	t.Helper()
	if got.Dist(want) > epsilon {
		t.Fatalf("got %v, expected %v", got, want)
	}
}

func assertValid(t *testing.T, p *Path) {
	t.Helper()
	n := p.Len()
	if n%3 != 1 || n < 4 {
		t.Fatalf("path has %d control points", n)
	}
	if len(p.cont) != (n-1)/3+1 {
		t.Fatalf("path has %d classifiers for %d points", len(p.cont), n)
	}
	if p.Closed() && p.points[0] != p.points[n-1] {
		t.Fatalf("closed path endpoints differ: %v %v", p.points[0], p.points[n-1])
	}
}

// straight returns an open three-knot path along the x axis with the middle
// knot at the origin and its tangents at (-10,0) and (10,0).
func straight(t *testing.T) *Path {
	t.Helper()
	p, err := NewPath([]geom.Point{
		{-30, 0}, {-20, 0}, {-10, 0},
		{0, 0},
		{10, 0}, {20, 0}, {30, 0},
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// wave returns a curved open path with two segments.
func wave(t *testing.T) *Path {
	t.Helper()
	p, err := NewPath([]geom.Point{
		{0, 0}, {10, 40}, {40, 40},
		{50, 0},
		{60, -40}, {90, -40}, {100, 0},
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	return p
}
