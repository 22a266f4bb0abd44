package fill

import (
	"math"
	"slices"

	"honnef.co/go/curve"

	"github.com/inamate/vecedit/internal/figure"
	"github.com/inamate/vecedit/internal/geom"
)

// boundary is one participating path in sheet coordinates. Positions along
// it are measured by u in [0, len(cubics)]: segment index plus parameter.
type boundary struct {
	cubics []curve.CubicBez
	closed bool
}

func (b *boundary) span() float64 { return float64(len(b.cubics)) }

func (b *boundary) eval(u float64) curve.Point {
	n := len(b.cubics)
	if b.closed {
		u = math.Mod(u, b.span())
		if u < 0 {
			u += b.span()
		}
	}
	s := min(max(int(math.Floor(u)), 0), n-1)
	return b.cubics[s].Eval(u - float64(s))
}

type vertex struct {
	p   curve.Point
	out []halfEdge
}

// edge is the stretch of a boundary between two consecutive cuts. On closed
// boundaries u1 may exceed span, wrapping past the start.
type edge struct {
	path   int
	u0, u1 float64
	v0, v1 int
}

type halfEdge struct {
	edge    int
	forward bool
}

type graph struct {
	eps    float64
	bounds []*boundary
	verts  []vertex
	edges  []edge
}

// collect gathers the unfilled paths among figs, descending into groups.
func collect(figs []figure.Figure) []*boundary {
	var out []*boundary
	for _, f := range figs {
		figure.Walk(f, geom.Identity(), func(f figure.Figure, parent geom.Matrix) {
			p, ok := f.(*figure.Path)
			if !ok || p.Style().Filled {
				return
			}
			aff := parent.Multiply(p.Transform()).Affine()
			b := &boundary{closed: p.Closed(), cubics: make([]curve.CubicBez, p.Segments())}
			for s := range b.cubics {
				b.cubics[s] = p.Segment(s).Transform(aff)
			}
			out = append(out, b)
		})
	}
	return out
}

// probe casts a ray from pick towards -x and returns the nearest crossing.
// Crossings where the boundary runs along the ray are ignored.
func probe(bounds []*boundary, pick curve.Point) (path int, u float64, ok bool) {
	minX := math.Inf(1)
	for _, b := range bounds {
		for _, c := range b.cubics {
			minX = min(minX, c.P0.X, c.P1.X, c.P2.X, c.P3.X)
		}
	}
	if !(minX < pick.X) {
		return 0, 0, false
	}
	ray := curve.Line{P0: curve.Pt(minX-1, pick.Y), P1: pick}
	bestX := math.Inf(-1)
	for i, b := range bounds {
		for s, c := range b.cubics {
			hits, n := c.IntersectLine(ray)
			for _, h := range hits[:n] {
				t := min(max(h.SegmentT, 0), 1)
				p := c.Eval(t)
				if p.X >= pick.X || p.X <= bestX {
					continue
				}
				d := c.Differentiate().Eval(t)
				if math.Abs(d.Y) <= 1e-6*math.Hypot(d.X, d.Y) {
					continue
				}
				bestX = p.X
				path, u, ok = i, float64(s)+t, true
			}
		}
	}
	return path, u, ok
}

// build cuts every boundary at its crossings with other boundaries, at its
// open ends and at extra, then links the pieces into a planar graph.
func build(bounds []*boundary, eps float64, extra map[int][]float64) *graph {
	g := &graph{eps: eps, bounds: bounds}
	cuts := make([][]float64, len(bounds))
	for i, b := range bounds {
		if !b.closed {
			cuts[i] = append(cuts[i], 0, b.span())
		}
		cuts[i] = append(cuts[i], extra[i]...)
	}
	for i := range bounds {
		for j := i + 1; j < len(bounds); j++ {
			for si, a := range bounds[i].cubics {
				for sj, c := range bounds[j].cubics {
					for _, h := range intersectCubics(a, c, eps) {
						cuts[i] = append(cuts[i], float64(si)+h[0])
						cuts[j] = append(cuts[j], float64(sj)+h[1])
					}
				}
			}
		}
	}
	for i, b := range bounds {
		g.addEdges(i, b, g.mergeCuts(b, cuts[i]))
	}
	return g
}

func (g *graph) mergeCuts(b *boundary, cuts []float64) []float64 {
	slices.Sort(cuts)
	var out []float64
	for _, u := range cuts {
		if len(out) > 0 && b.eval(out[len(out)-1]).Distance(b.eval(u)) <= g.eps {
			continue
		}
		out = append(out, u)
	}
	if b.closed && len(out) > 1 && b.eval(out[len(out)-1]).Distance(b.eval(out[0])) <= g.eps {
		out = out[:len(out)-1]
	}
	return out
}

func (g *graph) addEdges(path int, b *boundary, cuts []float64) {
	add := func(u0, u1 float64) {
		if u1-u0 < 1e-12 {
			return
		}
		v0 := g.vertexAt(b.eval(u0))
		v1 := g.vertexAt(b.eval(u1))
		if v0 == v1 && b.eval((u0+u1)/2).Distance(g.verts[v0].p) <= g.eps {
			return
		}
		e := len(g.edges)
		g.edges = append(g.edges, edge{path: path, u0: u0, u1: u1, v0: v0, v1: v1})
		g.verts[v0].out = append(g.verts[v0].out, halfEdge{edge: e, forward: true})
		g.verts[v1].out = append(g.verts[v1].out, halfEdge{edge: e, forward: false})
	}
	for k := 0; k+1 < len(cuts); k++ {
		add(cuts[k], cuts[k+1])
	}
	if b.closed && len(cuts) > 0 {
		add(cuts[len(cuts)-1], cuts[0]+b.span())
	}
}

// vertexAt returns the vertex within eps of p, creating one if needed.
func (g *graph) vertexAt(p curve.Point) int {
	for i, v := range g.verts {
		if v.p.Distance(p) <= g.eps {
			return i
		}
	}
	g.verts = append(g.verts, vertex{p: p})
	return len(g.verts) - 1
}

func (g *graph) end(h halfEdge) int {
	if h.forward {
		return g.edges[h.edge].v1
	}
	return g.edges[h.edge].v0
}

func (g *graph) step(e edge) float64 {
	return min(1e-4, (e.u1-e.u0)/4)
}

// leaving is the direction in which h departs its start vertex.
func (g *graph) leaving(h halfEdge) curve.Vec2 {
	e := g.edges[h.edge]
	b := g.bounds[e.path]
	d := g.step(e)
	if h.forward {
		return b.eval(e.u0 + d).Sub(b.eval(e.u0))
	}
	return b.eval(e.u1 - d).Sub(b.eval(e.u1))
}

// arriving is the direction in which h enters its end vertex.
func (g *graph) arriving(h halfEdge) curve.Vec2 {
	e := g.edges[h.edge]
	b := g.bounds[e.path]
	d := g.step(e)
	if h.forward {
		return b.eval(e.u1).Sub(b.eval(e.u1 - d))
	}
	return b.eval(e.u0).Sub(b.eval(e.u0 + d))
}

// pieces returns the cubics covering h in travel order.
func (g *graph) pieces(h halfEdge) []curve.CubicBez {
	e := g.edges[h.edge]
	b := g.bounds[e.path]
	n := len(b.cubics)
	var out []curve.CubicBez
	for s := int(math.Floor(e.u0)); float64(s) < e.u1; s++ {
		t0 := max(e.u0-float64(s), 0)
		t1 := min(e.u1-float64(s), 1)
		if t1-t0 < 1e-12 {
			continue
		}
		out = append(out, b.cubics[s%n].Subsegment(t0, t1))
	}
	if !h.forward {
		slices.Reverse(out)
		for i := range out {
			out[i] = reverseCubic(out[i])
		}
	}
	return out
}
