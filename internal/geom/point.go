package geom

import (
	"math"

	"honnef.co/go/curve"
)

// Point is a position or an offset. The coordinate space (device, sheet or
// figure-local) is defined by whoever holds it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(o Point) Point     { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point     { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Mul(f float64) Point   { return Point{p.X * f, p.Y * f} }
func (p Point) Dot(o Point) float64   { return p.X*o.X + p.Y*o.Y }
func (p Point) Cross(o Point) float64 { return p.X*o.Y - p.Y*o.X }

// Len returns the length of p taken as a vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the euclidean distance between p and o.
func (p Point) Dist(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Lerp interpolates linearly between p (t=0) and o (t=1).
func (p Point) Lerp(o Point, t float64) Point {
	return Point{p.X + (o.X-p.X)*t, p.Y + (o.Y-p.Y)*t}
}

// Mirror reflects p through center.
func (p Point) Mirror(center Point) Point {
	return Point{2*center.X - p.X, 2*center.Y - p.Y}
}

// Near reports whether p and o are within eps of each other.
func (p Point) Near(o Point, eps float64) bool {
	return p.Dist(o) <= eps
}

// Curve converts p to the curve package's point type.
func (p Point) Curve() curve.Point {
	return curve.Pt(p.X, p.Y)
}

// FromCurve converts a curve package point.
func FromCurve(p curve.Point) Point {
	return Point{X: p.X, Y: p.Y}
}
