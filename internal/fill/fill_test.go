package fill

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

// grid returns two vertical and two horizontal lines crossing like a
// tic-tac-toe board spanning [0,30] with the center cell [10,20].
func grid() []figure.Figure {
	return []figure.Figure{
		figure.Line(geom.Pt(10, 0), geom.Pt(10, 30)),
		figure.Line(geom.Pt(20, 0), geom.Pt(20, 30)),
		figure.Line(geom.Pt(0, 10), geom.Pt(30, 10)),
		figure.Line(geom.Pt(0, 20), geom.Pt(30, 20)),
	}
}

// circle approximates a circle with four cubics.
func circle(c geom.Point, r float64) *figure.Path {
	const k = 0.5522847498
	pts := []geom.Point{
		{c.X + r, c.Y},
		{c.X + r, c.Y + k*r}, {c.X + k*r, c.Y + r}, {c.X, c.Y + r},
		{c.X - k*r, c.Y + r}, {c.X - r, c.Y + k*r}, {c.X - r, c.Y},
		{c.X - r, c.Y - k*r}, {c.X - k*r, c.Y - r}, {c.X, c.Y - r},
		{c.X + k*r, c.Y - r}, {c.X + r, c.Y - k*r}, {c.X + r, c.Y},
	}
	p, err := figure.NewPath(pts, true)
	if err != nil {
		panic(err)
	}
	return p
}

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestTraceCenterCell(t *testing.T) {
	region, err := Trace(context.Background(), grid(), geom.Pt(15, 15), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !region.Closed() || !region.Style().Filled {
		t.Error("region is not a closed filled path")
	}
	if region.Len()%3 != 1 {
		t.Errorf("region has %d points", region.Len())
	}
	diff(t, geom.Rect{X: 10, Y: 10, Width: 10, Height: 10}, region.Bounds(), approx)
	if !region.Contains(geom.Pt(15, 15)) {
		t.Error("region does not contain the pick point")
	}
}

func TestTraceCornerCellOfClosedFrame(t *testing.T) {
	figs := append(grid(), func() figure.Figure {
		p, _ := figure.NewPath([]geom.Point{
			{0, 0}, {10, 0}, {20, 0}, {30, 0},
			{30, 10}, {30, 20}, {30, 30},
			{20, 30}, {10, 30}, {0, 30},
			{0, 20}, {0, 10}, {0, 0},
		}, true)
		return p
	}())

	region, err := Trace(context.Background(), figs, geom.Pt(25, 5), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	diff(t, geom.Rect{X: 20, Y: 0, Width: 10, Height: 10}, region.Bounds(), approx)
}

func TestTraceSingleClosedPath(t *testing.T) {
	c := circle(geom.Pt(50, 50), 20)
	region, err := Trace(context.Background(), []figure.Figure{c}, geom.Pt(50, 45), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	diff(t, c.Bounds(), region.Bounds(), cmpopts.EquateApprox(0, 1e-3))
}

func TestTraceInsideGroup(t *testing.T) {
	g := figure.NewGroup(grid())
	g.SetTransform(geom.Translate(100, 0))

	region, err := Trace(context.Background(), []figure.Figure{g}, geom.Pt(115, 15), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	diff(t, geom.Rect{X: 110, Y: 10, Width: 10, Height: 10}, region.Bounds(), approx)
}

func TestTraceFailures(t *testing.T) {
	filled := circle(geom.Pt(15, 15), 3)
	s := filled.Style()
	s.Filled = true
	filled.SetStyle(s)

	tests := []struct {
		name string
		figs []figure.Figure
		pick geom.Point
		opts Options
		want []error
	}{
		{"nothing to the left", grid(), geom.Pt(5, 15), DefaultOptions(), []error{ErrNoRegion}},
		{"outside everything", grid(), geom.Pt(100, 100), DefaultOptions(), []error{ErrNoRegion}},
		{"open cell", grid(), geom.Pt(25, 5), DefaultOptions(), []error{ErrNotEnclosed, ErrNoRegion, ErrIterationLimit}},
		{"filled paths do not bound", []figure.Figure{filled}, geom.Pt(15, 15), DefaultOptions(), []error{ErrNoRegion}},
		{"budget", grid(), geom.Pt(15, 15), Options{MaxIterations: 2}, []error{ErrIterationLimit}},
		{"empty", nil, geom.Pt(0, 0), DefaultOptions(), []error{ErrNoRegion}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, err := Trace(context.Background(), tt.figs, tt.pick, tt.opts)
			if region != nil {
				t.Fatalf("got region %v", region.Bounds())
			}
			for _, want := range tt.want {
				if errors.Is(err, want) {
					return
				}
			}
			t.Errorf("Trace() error = %v, want one of %v", err, tt.want)
		})
	}
}

func TestTraceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Trace(ctx, grid(), geom.Pt(15, 15), DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Trace() error = %v, want context.Canceled", err)
	}
}

func TestIntersectCubics(t *testing.T) {
	h := figure.Line(geom.Pt(0, 10), geom.Pt(30, 10)).Segment(0)
	v := figure.Line(geom.Pt(10, 0), geom.Pt(10, 30)).Segment(0)
	hits := intersectCubics(h, v, 1e-3)
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	diff(t, [2]float64{1.0 / 3, 1.0 / 3}, hits[0], approx)

	arc := circle(geom.Pt(0, 0), 10)
	var n int
	for s := range arc.Segments() {
		n += len(intersectCubics(arc.Segment(s), figure.Line(geom.Pt(-20, 0), geom.Pt(20, 1)).Segment(0), 1e-3))
	}
	if n != 2 {
		t.Errorf("line crosses circle %d times, want 2", n)
	}

	far := figure.Line(geom.Pt(100, 100), geom.Pt(200, 100)).Segment(0)
	if hits := intersectCubics(h, far, 1e-3); len(hits) != 0 {
		t.Errorf("disjoint curves intersect at %v", hits)
	}
}

func TestProbeSkipsTangentialHits(t *testing.T) {
	c := circle(geom.Pt(0, 0), 10)
	b := collect([]figure.Figure{c})
	// The ray along y = -10 only touches the top of the circle.
	if _, _, ok := probe(b, geom.Pt(20, -10).Curve()); ok {
		t.Error("tangential touch accepted as a crossing")
	}
	_, u, ok := probe(b, geom.Pt(0, -3).Curve())
	if !ok {
		t.Fatal("no crossing from inside the circle")
	}
	if p := b[0].eval(u); p.X >= 0 || math.Abs(p.Y+3) > 1e-6 {
		t.Errorf("probe hit %v, want the left side at y = -3", p)
	}
}
