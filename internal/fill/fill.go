// Package fill derives a closed region from the unfilled paths surrounding
// a point, the way a paint bucket would on a raster.
package fill

import (
	"context"
	"errors"
	"math"
	"slices"

	"honnef.co/go/curve"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
)

var (
	// ErrNoRegion means no boundary chain around the point could be closed.
	ErrNoRegion = errors.New("no boundary encloses the point")
	// ErrNotEnclosed means loops were found but none contains the point.
	ErrNotEnclosed = errors.New("traced boundary does not enclose the point")
	// ErrIterationLimit means the walk ran out of budget.
	ErrIterationLimit = errors.New("boundary trace exceeded its iteration budget")
)

// Options bounds the trace.
type Options struct {
	// MaxIterations caps walk steps, backtracking included.
	MaxIterations int
	// Epsilon is the sheet distance under which points are the same vertex.
	Epsilon float64
}

// DefaultOptions returns a budget of 100 steps and a 1e-3 merge distance.
func DefaultOptions() Options {
	return Options{MaxIterations: 100, Epsilon: 1e-3}
}

type frame struct {
	v     int
	in    halfEdge
	hasIn bool
	dir   curve.Vec2
	tried map[halfEdge]bool
}

// Trace finds the smallest region around pick bounded by the unfilled paths
// among figs (groups included) and returns it as a new closed path in sheet
// coordinates.
//
// The walk starts where a ray from pick towards -x first meets a boundary
// and always takes the sharpest right turn (screen coordinates, y down), so
// the region is traversed clockwise. Dead ends are backtracked. Crossings of
// a path with itself and three or more curves meeting at one point are not
// resolved; such input fails with one of the package errors.
func Trace(ctx context.Context, figs []figure.Figure, pick geom.Point, opts Options) (*figure.Path, error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultOptions().Epsilon
	}

	bounds := collect(figs)
	path, u, ok := probe(bounds, pick.Curve())
	if !ok {
		return nil, ErrNoRegion
	}
	g := build(bounds, opts.Epsilon, map[int][]float64{path: {u}})
	start := g.vertexAt(bounds[path].eval(u))

	frames := []frame{{v: start, dir: curve.Vec2{X: -1}, tried: map[halfEdge]bool{}}}
	rejected := false
	for iter := 0; ; iter++ {
		if iter >= opts.MaxIterations {
			return nil, ErrIterationLimit
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := &frames[len(frames)-1]
		h, ok := g.next(top)
		if !ok {
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				if rejected {
					return nil, ErrNotEnclosed
				}
				return nil, ErrNoRegion
			}
			continue
		}
		top.tried[h] = true

		w := g.end(h)
		if j := slices.IndexFunc(frames, func(f frame) bool { return f.v == w }); j >= 0 {
			loop := make([]halfEdge, 0, len(frames)-j)
			for _, f := range frames[j+1:] {
				loop = append(loop, f.in)
			}
			loop = append(loop, h)
			if region, err := g.assemble(loop); err == nil && region.Contains(pick) {
				return region, nil
			}
			rejected = true
			continue
		}
		frames = append(frames, frame{v: w, in: h, hasIn: true, dir: g.arriving(h), tried: map[halfEdge]bool{}})
	}
}

// next picks the untried outgoing edge with the sharpest right turn. The
// edge just arrived by is never taken back.
func (g *graph) next(f *frame) (halfEdge, bool) {
	best := halfEdge{}
	bestTurn := math.Inf(-1)
	for _, h := range g.verts[f.v].out {
		if f.tried[h] {
			continue
		}
		if f.hasIn && h.edge == f.in.edge && h.forward != f.in.forward {
			continue
		}
		out := g.leaving(h)
		turn := math.Atan2(f.dir.Cross(out), f.dir.Dot(out))
		if turn > bestTurn {
			best, bestTurn = h, turn
		}
	}
	return best, !math.IsInf(bestTurn, -1)
}

// assemble splices the sub-arcs of loop into one closed path.
func (g *graph) assemble(loop []halfEdge) (*figure.Path, error) {
	var pts []geom.Point
	for _, h := range loop {
		for _, c := range g.pieces(h) {
			if len(pts) == 0 {
				pts = append(pts, geom.FromCurve(c.P0))
			}
			pts = append(pts, geom.FromCurve(c.P1), geom.FromCurve(c.P2), geom.FromCurve(c.P3))
		}
	}
	if len(pts) < 4 {
		return nil, ErrNoRegion
	}
	pts[len(pts)-1] = pts[0]
	region, err := figure.NewPath(pts, true)
	if err != nil {
		return nil, err
	}
	s := region.Style()
	s.Filled = true
	region.SetStyle(s)
	return region, nil
}
